// Package pms5003test provides an in-memory sensor transport and sensor-side
// frame builders for testing code that talks to a PMS5003.
package pms5003test

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

// ErrInjected is returned by a Transport once its configured failure point is
// reached.
var ErrInjected = errors.New("pms5003test: injected failure")

// Transport is a fake byte transport. Reads are served from a queue of bytes
// the test supplies; writes are recorded. It is safe for concurrent use.
type Transport struct {
	mu      sync.Mutex
	in      []byte
	out     []byte
	reads   int
	flushes int
	closed  bool

	// FailReadAt makes the n-th ReadByte call (1-based) fail. Zero disables.
	FailReadAt  int
	// FailWriteAt makes the n-th WriteByte call (1-based) fail. Zero disables.
	FailWriteAt int
	// OnWrite, if set, is called with every complete command frame written.
	// Its return value is queued for reading, so it can act as a sensor.
	OnWrite     func(frame []byte) []byte

	pending []byte
}

// NewTransport returns a Transport with in queued for reading.
func NewTransport(in ...[]byte) *Transport {
	t := &Transport{}
	for _, b := range in {
		t.in = append(t.in, b...)
	}
	return t
}

// Feed queues more bytes for reading.
func (t *Transport) Feed(b ...byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.in = append(t.in, b...)
}

func (t *Transport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	if t.FailReadAt != 0 && t.reads == t.FailReadAt {
		return 0, ErrInjected
	}
	if len(t.in) == 0 {
		return 0, io.EOF
	}
	c := t.in[0]
	t.in = t.in[1:]
	return c, nil
}

func (t *Transport) WriteByte(c byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailWriteAt != 0 && len(t.out)+1 == t.FailWriteAt {
		return ErrInjected
	}
	t.out = append(t.out, c)
	if t.OnWrite == nil {
		return nil
	}
	t.pending = append(t.pending, c)
	if len(t.pending) == CommandFrameLen {
		t.in = append(t.in, t.OnWrite(t.pending)...)
		t.pending = nil
	}
	return nil
}

// Flush drops every byte still queued for reading.
func (t *Transport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushes++
	t.in = nil
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Written returns a copy of everything written so far.
func (t *Transport) Written() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.out...)
}

// Reads returns the number of ReadByte calls made.
func (t *Transport) Reads() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}

// Remaining returns the number of bytes still queued for reading.
func (t *Transport) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.in)
}

func (t *Transport) Flushes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushes
}

func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// CommandFrameLen is the size of a command frame sent to the sensor.
const CommandFrameLen = 7

// Frame builds an incoming frame around payload: start characters, length
// field, payload and a checksum over all of them.
func Frame(payload []byte) []byte {
	f := make([]byte, 0, len(payload)+6)
	f = append(f, 0x42, 0x4D)
	f = binary.BigEndian.AppendUint16(f, uint16(len(payload)+2))
	f = append(f, payload...)
	var sum uint16
	for _, c := range f {
		sum += uint16(c)
	}
	return binary.BigEndian.AppendUint16(f, sum)
}

// Response builds the frame the sensor answers a command with.
func Response(cmd, data byte) []byte {
	return Frame([]byte{cmd, data})
}

// MeasurementPayload lays out twelve field values plus the reserved word.
func MeasurementPayload(fields [12]uint16) []byte {
	p := make([]byte, 0, 26)
	for _, v := range fields {
		p = binary.BigEndian.AppendUint16(p, v)
	}
	return append(p, 0x00, 0x00)
}

// MeasurementFrame builds a complete measurement frame carrying fields.
func MeasurementFrame(fields [12]uint16) []byte {
	return Frame(MeasurementPayload(fields))
}

// Sensor returns an OnWrite handler that answers like a sensor: mode and sleep
// commands are echoed (except Wakeup, which gets no reply) and a passive read
// request is answered with the next entry of readings, repeating the last.
func Sensor(readings ...[12]uint16) func(frame []byte) []byte {
	var mu sync.Mutex
	i := 0
	return func(frame []byte) []byte {
		cmd, data := frame[2], frame[4]
		switch cmd {
		case 0xE1:
			return Response(cmd, data)
		case 0xE4:
			if data == 1 {
				return nil
			}
			return Response(cmd, data)
		case 0xE2:
			mu.Lock()
			defer mu.Unlock()
			if len(readings) == 0 {
				return nil
			}
			r := readings[i]
			if i < len(readings)-1 {
				i++
			}
			return MeasurementFrame(r)
		}
		return nil
	}
}
