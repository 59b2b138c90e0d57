package pms5003

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		err  Error
		msg  string
		code string
	}{
		{ErrNone, "No error", "none"},
		{ErrWriteSerial, "Error writing serial data", "write_serial"},
		{ErrUnexpectedResponse, "Unexpected response", "unexpected_response"},
		{ErrInvalidStartChar, "Invalid start character", "invalid_start_char"},
		{ErrUnexpectedFrameLength, "Unexpected frame length", "unexpected_frame_length"},
		{ErrBadChecksum, "Bad checksum", "bad_checksum"},
		{ErrReadSerial, "Error reading serial data", "read_serial"},
		{ErrEmptyData, "Empty data (sensor not ready?)", "empty_data"},
		{Error(200), "Unknown error", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
			assert.Equal(t, tt.code, tt.err.Code())
		})
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("device unplugged")

	tests := []struct {
		name   string
		err    error
		want   Error
		wantOK bool
	}{
		{name: "nil", err: nil, want: ErrNone, wantOK: true},
		{name: "bare kind", err: ErrBadChecksum, want: ErrBadChecksum, wantOK: true},
		{name: "transport failure", err: fmt.Errorf("%w: %w", ErrReadSerial, cause), want: ErrReadSerial, wantOK: true},
		{name: "wrapped again", err: fmt.Errorf("poll: %w", ErrInvalidStartChar), want: ErrInvalidStartChar, wantOK: true},
		{name: "foreign", err: cause, want: ErrNone, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KindOf(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIsFramingError(t *testing.T) {
	assert.True(t, IsFramingError(ErrInvalidStartChar))
	assert.True(t, IsFramingError(ErrUnexpectedFrameLength))
	assert.True(t, IsFramingError(fmt.Errorf("x: %w", ErrBadChecksum)))
	assert.False(t, IsFramingError(ErrReadSerial))
	assert.False(t, IsFramingError(ErrUnexpectedResponse))
	assert.False(t, IsFramingError(nil))
}
