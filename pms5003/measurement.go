package pms5003

import "encoding/binary"

// Measurement is one decoded measurement frame.
//
// The CF1 fields are mass concentrations in µg/m³ under the factory
// calibration, the Atm fields the same under atmospheric environment. The Gt
// fields count particles per 0.1 L of air with a diameter above the named
// threshold.
type Measurement struct {
	PM1p0CF1 uint16
	PM2p5CF1 uint16
	PM10CF1  uint16

	PM1p0Atm uint16
	PM2p5Atm uint16
	PM10Atm  uint16

	Gt0p3um uint16
	Gt0p5um uint16
	Gt1p0um uint16
	Gt2p5um uint16
	Gt5p0um uint16
	Gt10um  uint16
}

// ExtractMeasurement decodes the twelve big-endian fields of a measurement
// payload. The trailing reserved word is ignored and no value is range checked.
func ExtractMeasurement(p [MeasurementPayloadLen]byte) Measurement {
	word := func(i int) uint16 {
		return binary.BigEndian.Uint16(p[2*i:])
	}
	return Measurement{
		PM1p0CF1: word(0),
		PM2p5CF1: word(1),
		PM10CF1:  word(2),
		PM1p0Atm: word(3),
		PM2p5Atm: word(4),
		PM10Atm:  word(5),
		Gt0p3um:  word(6),
		Gt0p5um:  word(7),
		Gt1p0um:  word(8),
		Gt2p5um:  word(9),
		Gt5p0um:  word(10),
		Gt10um:   word(11),
	}
}
