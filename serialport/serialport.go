// Package serialport is a byte-at-a-time UART transport for the PMS5003.
package serialport

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// The sensor's line settings are fixed at 9600 8N1.
const (
	Baud               = 9600
	DefaultReadTimeout = 2 * time.Second
)

// ErrTimeout is returned by ReadByte when no byte arrived within the read
// timeout.
var ErrTimeout = errors.New("serialport: read timeout")

type Config struct {
	// Device is the port path, e.g. /dev/ttyAMA0 or /dev/ttyUSB0.
	Device      string
	ReadTimeout time.Duration
}

// Port implements io.ByteReader and io.ByteWriter over a serial line. Nothing
// is buffered: every call is one read or write on the line.
type Port struct {
	rw  io.ReadWriteCloser
	buf [1]byte
}

// Open opens the UART described by cfg.
func Open(cfg Config) (*Port, error) {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	c := &serial.Config{
		Name:        cfg.Device,
		Baud:        Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: cfg.ReadTimeout,
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.Device)
	}
	return New(p), nil
}

// New wraps an already open line.
func New(rw io.ReadWriteCloser) *Port {
	return &Port{rw: rw}
}

func (p *Port) ReadByte() (byte, error) {
	n, err := p.rw.Read(p.buf[:])
	if n == 1 {
		return p.buf[0], nil
	}
	// tarm/serial reports an expired VTIME as a zero-length read or io.EOF.
	if err == nil || err == io.EOF {
		return 0, ErrTimeout
	}
	return 0, errors.Wrap(err, "read")
}

func (p *Port) WriteByte(c byte) error {
	p.buf[0] = c
	n, err := p.rw.Write(p.buf[:])
	if err != nil {
		return errors.Wrap(err, "write")
	}
	if n != 1 {
		return errors.Wrap(io.ErrShortWrite, "write")
	}
	return nil
}

// Flush discards input received but not yet read.
func (p *Port) Flush() error {
	f, ok := p.rw.(interface{ Flush() error })
	if !ok {
		return nil
	}
	return errors.Wrap(f.Flush(), "flush")
}

func (p *Port) Close() error {
	return p.rw.Close()
}
