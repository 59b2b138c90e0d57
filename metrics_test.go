package main

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"pms5003-exporter/pms5003"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)

	m.Observe("/dev/ttyUSB0", "living", pms5003.Measurement{
		PM1p0CF1: 10, PM2p5CF1: 20, PM10CF1: 30,
		PM1p0Atm: 11, PM2p5Atm: 21, PM10Atm: 31,
		Gt0p3um: 1, Gt0p5um: 2, Gt1p0um: 3,
		Gt2p5um: 4, Gt5p0um: 5, Gt10um: 6,
	}, time.Unix(1700000000, 0))

	assert.Equal(t, 20.0, testutil.ToFloat64(m.pmCF1.WithLabelValues("/dev/ttyUSB0", "living", "2.5")))
	assert.Equal(t, 31.0, testutil.ToFloat64(m.pmAtm.WithLabelValues("/dev/ttyUSB0", "living", "10")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.particles.WithLabelValues("/dev/ttyUSB0", "living", "0.3")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.particles.WithLabelValues("/dev/ttyUSB0", "living", "10")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastUpdate.WithLabelValues("/dev/ttyUSB0", "living")))

	assert.Equal(t, 3, testutil.CollectAndCount(m.pmCF1))
	assert.Equal(t, 6, testutil.CollectAndCount(m.particles))
}

func TestMetricsFail(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)

	m.Observe("d", "n", pms5003.Measurement{PM2p5Atm: 5}, time.Now())
	m.Fail("d", "n", pms5003.ErrBadChecksum)
	m.Fail("d", "n", pms5003.ErrBadChecksum)
	m.Fail("d", "n", errors.New("open /dev/ttyUSB0: no such file"))

	assert.True(t, math.IsNaN(testutil.ToFloat64(m.pmAtm.WithLabelValues("d", "n", "2.5"))))
	assert.True(t, math.IsNaN(testutil.ToFloat64(m.particles.WithLabelValues("d", "n", "1.0"))))

	expected := `
# HELP pms5003_errors_total Failed sensor operations by error kind
# TYPE pms5003_errors_total counter
pms5003_errors_total{device="d",kind="bad_checksum",name="n"} 2
pms5003_errors_total{device="d",kind="other",name="n"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(m.errors, strings.NewReader(expected)))
}
