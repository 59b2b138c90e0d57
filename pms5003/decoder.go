package pms5003

import (
	"fmt"
	"io"
)

const (
	// ResponsePayloadLen is the payload size of a command response frame.
	ResponsePayloadLen = 2
	// MeasurementPayloadLen is the payload size of a measurement frame.
	MeasurementPayloadLen = 26
)

// ReadFrame reads one incoming frame carrying payloadLen bytes of payload from
// r and returns the payload.
//
// The start characters, the length field (which must equal payloadLen+2) and
// the trailing checksum are checked in that order. The checksum is the sum of
// every byte from the first start character through the last payload byte,
// length field included. Nothing is read past the first failure and no attempt
// is made to resynchronize. A negative payloadLen matches no frame and is
// reported as ErrUnexpectedFrameLength without reading.
func ReadFrame(r io.ByteReader, payloadLen int) ([]byte, error) {
	if payloadLen < 0 {
		return nil, ErrUnexpectedFrameLength
	}
	var sum uint16

	next := func() (byte, error) {
		c, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrReadSerial, err)
		}
		return c, nil
	}

	for _, want := range [...]byte{startChar1, startChar2} {
		c, err := next()
		if err != nil {
			return nil, err
		}
		if c != want {
			return nil, ErrInvalidStartChar
		}
		sum += uint16(c)
	}

	hi, err := next()
	if err != nil {
		return nil, err
	}
	lo, err := next()
	if err != nil {
		return nil, err
	}
	sum += uint16(hi) + uint16(lo)
	if length := int(hi)<<8 | int(lo); length != payloadLen+2 {
		return nil, ErrUnexpectedFrameLength
	}

	payload := make([]byte, payloadLen)
	for i := range payload {
		c, err := next()
		if err != nil {
			return nil, err
		}
		payload[i] = c
		sum += uint16(c)
	}

	if hi, err = next(); err != nil {
		return nil, err
	}
	if lo, err = next(); err != nil {
		return nil, err
	}
	if uint16(hi)<<8|uint16(lo) != sum {
		return nil, ErrBadChecksum
	}

	return payload, nil
}
