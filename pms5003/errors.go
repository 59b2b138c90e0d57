package pms5003

import "errors"

// Error is the kind of failure reported by a protocol operation.
// Transport failures are returned wrapped together with the transport's own
// error, so compare with errors.Is or use KindOf.
type Error uint8

const (
	// ErrNone is never returned; KindOf reports it for a nil error.
	ErrNone Error = iota
	ErrWriteSerial
	ErrUnexpectedResponse
	ErrInvalidStartChar
	ErrUnexpectedFrameLength
	ErrBadChecksum
	ErrReadSerial
	// ErrEmptyData is not raised by this package. Callers use it to classify
	// a measurement they consider not yet valid, e.g. all fields zero.
	ErrEmptyData
)

var errorStrings = [...]string{
	ErrNone:                  "No error",
	ErrWriteSerial:           "Error writing serial data",
	ErrUnexpectedResponse:    "Unexpected response",
	ErrInvalidStartChar:      "Invalid start character",
	ErrUnexpectedFrameLength: "Unexpected frame length",
	ErrBadChecksum:           "Bad checksum",
	ErrReadSerial:            "Error reading serial data",
	ErrEmptyData:             "Empty data (sensor not ready?)",
}

var errorCodes = [...]string{
	ErrNone:                  "none",
	ErrWriteSerial:           "write_serial",
	ErrUnexpectedResponse:    "unexpected_response",
	ErrInvalidStartChar:      "invalid_start_char",
	ErrUnexpectedFrameLength: "unexpected_frame_length",
	ErrBadChecksum:           "bad_checksum",
	ErrReadSerial:            "read_serial",
	ErrEmptyData:             "empty_data",
}

func (e Error) Error() string {
	if int(e) < len(errorStrings) {
		return errorStrings[e]
	}
	return "Unknown error"
}

// Code returns a short identifier for e, suitable as a metric label.
func (e Error) Code() string {
	if int(e) < len(errorCodes) {
		return errorCodes[e]
	}
	return "unknown"
}

// KindOf returns the Error kind carried by err. It returns ErrNone for a nil
// error and false if err carries no kind.
func KindOf(err error) (Error, bool) {
	if err == nil {
		return ErrNone, true
	}
	var kind Error
	if errors.As(err, &kind) {
		return kind, true
	}
	return ErrNone, false
}

// IsFramingError reports whether err means the bytes on the wire did not form
// the expected frame. After such an error the input stream is out of step and
// the caller should discard pending input before the next read.
func IsFramingError(err error) bool {
	return errors.Is(err, ErrInvalidStartChar) ||
		errors.Is(err, ErrUnexpectedFrameLength) ||
		errors.Is(err, ErrBadChecksum)
}
