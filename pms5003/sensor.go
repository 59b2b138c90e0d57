package pms5003

import (
	"io"
	"time"
)

// Timing the sensor needs around its commands. None of it is enforced here.
const (
	// StableModeInterval is the minimum spacing of measurement reads for
	// stable output.
	StableModeInterval = 2300 * time.Millisecond
	// SleepSettleTime is how long the sensor ignores commands after Sleep.
	SleepSettleTime = 35 * time.Millisecond
	// WakeupSettleTime is how long the sensor ignores commands after Wakeup.
	WakeupSettleTime = 1400 * time.Millisecond
	// WakeupFanSpinUp is the datasheet's recommended wait after Wakeup before
	// trusting measurements.
	WakeupFanSpinUp = 30 * time.Second
)

// DataMode selects whether the sensor reports on request or continuously.
type DataMode uint16

const (
	DataModePassive DataMode = iota
	DataModeActive
)

func (m DataMode) String() string {
	switch m {
	case DataModePassive:
		return "passive"
	case DataModeActive:
		return "active"
	default:
		return "unknown"
	}
}

// SleepMode is the sensor power state.
type SleepMode uint16

const (
	Sleep SleepMode = iota
	Wakeup
)

func (m SleepMode) String() string {
	switch m {
	case Sleep:
		return "sleep"
	case Wakeup:
		return "wakeup"
	default:
		return "unknown"
	}
}

// SetDataMode switches the sensor to mode and checks the echoed response.
func SetDataMode(mode DataMode, w io.ByteWriter, r io.ByteReader) error {
	if err := WriteCommand(w, cmdChangeMode, uint16(mode)); err != nil {
		return err
	}
	return readResponse(r, cmdChangeMode, byte(mode))
}

// GetPassiveMeasurement requests a measurement from a sensor in passive mode
// and reads it.
func GetPassiveMeasurement(w io.ByteWriter, r io.ByteReader) (Measurement, error) {
	if err := WriteCommand(w, cmdReadInPassiveMode, 0); err != nil {
		return Measurement{}, err
	}
	return GetActiveMeasurement(r)
}

// GetActiveMeasurement reads the next measurement frame from r. In active mode
// consecutive calls should be at least StableModeInterval apart.
func GetActiveMeasurement(r io.ByteReader) (Measurement, error) {
	payload, err := ReadFrame(r, MeasurementPayloadLen)
	if err != nil {
		return Measurement{}, err
	}
	return ExtractMeasurement([MeasurementPayloadLen]byte(payload)), nil
}

// SleepSet puts the sensor to sleep or wakes it. Only Sleep is answered by the
// sensor; for Wakeup nothing is read from r.
//
// The sensor ignores further commands for SleepSettleTime after Sleep and
// WakeupSettleTime after Wakeup.
func SleepSet(mode SleepMode, w io.ByteWriter, r io.ByteReader) error {
	if err := WriteCommand(w, cmdSleepSet, uint16(mode)); err != nil {
		return err
	}
	if mode != Sleep {
		return nil
	}
	return readResponse(r, cmdSleepSet, byte(mode))
}

func readResponse(r io.ByteReader, cmd, data byte) error {
	payload, err := ReadFrame(r, ResponsePayloadLen)
	if err != nil {
		return err
	}
	if payload[0] != cmd || payload[1] != data {
		return ErrUnexpectedResponse
	}
	return nil
}

// ByteReadWriter is a byte transport to one sensor.
type ByteReadWriter interface {
	io.ByteReader
	io.ByteWriter
}

// Conn binds the protocol operations to one transport. It adds no state; the
// transport must not be used by anything else while a call is in progress.
type Conn struct {
	rw ByteReadWriter
}

func NewConn(rw ByteReadWriter) *Conn {
	return &Conn{rw: rw}
}

func (c *Conn) SetDataMode(mode DataMode) error {
	return SetDataMode(mode, c.rw, c.rw)
}

func (c *Conn) GetPassiveMeasurement() (Measurement, error) {
	return GetPassiveMeasurement(c.rw, c.rw)
}

func (c *Conn) GetActiveMeasurement() (Measurement, error) {
	return GetActiveMeasurement(c.rw)
}

func (c *Conn) SleepSet(mode SleepMode) error {
	return SleepSet(mode, c.rw, c.rw)
}
