package pms5003

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMeasurement(t *testing.T) {
	payload := [MeasurementPayloadLen]byte{
		0x00, 0x0A, 0x00, 0x14, 0x00, 0x1E,
		0x00, 0x0A, 0x00, 0x14, 0x00, 0x1E,
		0x00, 0x01, 0x00, 0x02, 0x00, 0x03,
		0x00, 0x04, 0x00, 0x05, 0x00, 0x06,
		0x00, 0x00,
	}

	want := Measurement{
		PM1p0CF1: 10, PM2p5CF1: 20, PM10CF1: 30,
		PM1p0Atm: 10, PM2p5Atm: 20, PM10Atm: 30,
		Gt0p3um: 1, Gt0p5um: 2, Gt1p0um: 3,
		Gt2p5um: 4, Gt5p0um: 5, Gt10um: 6,
	}
	assert.Equal(t, want, ExtractMeasurement(payload))
}

func TestExtractMeasurementPassesValuesThrough(t *testing.T) {
	tests := []struct {
		name string
		fill byte
		want uint16
	}{
		{name: "zero", fill: 0x00, want: 0x0000},
		{name: "max", fill: 0xFF, want: 0xFFFF},
		{name: "high bit", fill: 0x80, want: 0x8080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p [MeasurementPayloadLen]byte
			for i := range p {
				p[i] = tt.fill
			}
			m := ExtractMeasurement(p)
			assert.Equal(t, tt.want, m.PM1p0CF1)
			assert.Equal(t, tt.want, m.PM10Atm)
			assert.Equal(t, tt.want, m.Gt10um)
		})
	}
}

func TestExtractMeasurementIgnoresReserved(t *testing.T) {
	var a, b [MeasurementPayloadLen]byte
	b[24], b[25] = 0xAB, 0xCD
	assert.Equal(t, ExtractMeasurement(a), ExtractMeasurement(b))
}
