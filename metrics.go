package main

import (
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pms5003-exporter/pms5003"
)

// Metrics holds the exporter's collectors.
type Metrics struct {
	pmCF1      *prometheus.GaugeVec
	pmAtm      *prometheus.GaugeVec
	particles  *prometheus.GaugeVec
	lastUpdate *prometheus.GaugeVec
	errors     *prometheus.CounterVec
}

var (
	pmSizes            = []string{"1.0", "2.5", "10"}
	particleThresholds = []string{"0.3", "0.5", "1.0", "2.5", "5.0", "10"}
)

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pmCF1: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pms5003_pm_cf1_ugm3",
				Help: "Mass concentration under factory calibration (CF=1), µg/m³",
			},
			[]string{"device", "name", "size"},
		),
		pmAtm: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pms5003_pm_atm_ugm3",
				Help: "Mass concentration under atmospheric environment, µg/m³",
			},
			[]string{"device", "name", "size"},
		),
		particles: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pms5003_particles_per_deciliter",
				Help: "Particles above the threshold diameter (µm) per 0.1 L of air",
			},
			[]string{"device", "name", "threshold"},
		),
		lastUpdate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pms5003_last_measurement_timestamp_seconds",
				Help: "Unix time of the last published measurement",
			},
			[]string{"device", "name"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pms5003_errors_total",
				Help: "Failed sensor operations by error kind",
			},
			[]string{"device", "name", "kind"},
		),
	}
	reg.MustRegister(m.pmCF1, m.pmAtm, m.particles, m.lastUpdate, m.errors)
	return m
}

// newRegistry returns a registry carrying the Go runtime and process
// collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func (m *Metrics) Observe(device, name string, v pms5003.Measurement, at time.Time) {
	cf1 := []uint16{v.PM1p0CF1, v.PM2p5CF1, v.PM10CF1}
	atm := []uint16{v.PM1p0Atm, v.PM2p5Atm, v.PM10Atm}
	for i, size := range pmSizes {
		m.pmCF1.WithLabelValues(device, name, size).Set(float64(cf1[i]))
		m.pmAtm.WithLabelValues(device, name, size).Set(float64(atm[i]))
	}
	counts := []uint16{v.Gt0p3um, v.Gt0p5um, v.Gt1p0um, v.Gt2p5um, v.Gt5p0um, v.Gt10um}
	for i, th := range particleThresholds {
		m.particles.WithLabelValues(device, name, th).Set(float64(counts[i]))
	}
	m.lastUpdate.WithLabelValues(device, name).Set(float64(at.Unix()))
}

// Fail counts err and marks the sensor's readings as stale.
func (m *Metrics) Fail(device, name string, err error) {
	kind := "other"
	if k, ok := pms5003.KindOf(err); ok {
		kind = k.Code()
	}
	m.errors.WithLabelValues(device, name, kind).Inc()

	// 取得できなかった値はNaNにする
	for _, size := range pmSizes {
		m.pmCF1.WithLabelValues(device, name, size).Set(math.NaN())
		m.pmAtm.WithLabelValues(device, name, size).Set(math.NaN())
	}
	for _, th := range particleThresholds {
		m.particles.WithLabelValues(device, name, th).Set(math.NaN())
	}
}
