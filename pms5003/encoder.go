package pms5003

import (
	"fmt"
	"io"
)

const (
	startChar1 = 0x42
	startChar2 = 0x4D

	cmdReadInPassiveMode = 0xE2
	cmdChangeMode        = 0xE1
	cmdSleepSet          = 0xE4

	commandFrameLen = 7
)

// commandFrame lays out a command frame. The checksum covers both start
// characters, the command and the two data bytes.
func commandFrame(cmd byte, data uint16) [commandFrameLen]byte {
	f := [commandFrameLen]byte{startChar1, startChar2, cmd, byte(data >> 8), byte(data)}
	sum := checksum(f[:5])
	f[5] = byte(sum >> 8)
	f[6] = byte(sum)
	return f
}

// WriteCommand sends one command frame to w, a byte at a time. It stops at the
// first failed write and returns ErrWriteSerial; bytes already sent stay on
// the wire.
func WriteCommand(w io.ByteWriter, cmd byte, data uint16) error {
	f := commandFrame(cmd, data)
	for _, b := range f {
		if err := w.WriteByte(b); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteSerial, err)
		}
	}
	return nil
}

func checksum(b []byte) uint16 {
	var sum uint16
	for _, c := range b {
		sum += uint16(c)
	}
	return sum
}
