package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"pms5003-exporter/pms5003"
	"pms5003-exporter/serialport"
)

// activeReadAttempts bounds how many streamed frames are tried per poll in
// active mode before giving up until the next tick.
const activeReadAttempts = 3

// setupAttempts bounds how often the data mode command is resent when its
// response is mixed up with frames the sensor was still streaming.
const setupAttempts = 3

// sensorPort is the transport a Poller owns for the length of a session.
type sensorPort interface {
	io.ByteReader
	io.ByteWriter
	Flush() error
	Close() error
}

type openFunc func(SensorConfig) (sensorPort, error)

func openSerial(cfg SensorConfig) (sensorPort, error) {
	p, err := serialport.Open(serialport.Config{Device: cfg.Device, ReadTimeout: cfg.ReadTimeout})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Poller reads one sensor on an interval and publishes its measurements.
// It owns the sensor's port exclusively.
type Poller struct {
	cfg     SensorConfig
	open    openFunc
	metrics *Metrics
	log     *slog.Logger
	now     func() time.Time
}

func NewPoller(cfg SensorConfig, open openFunc, metrics *Metrics, log *slog.Logger) *Poller {
	return &Poller{
		cfg:     cfg,
		open:    open,
		metrics: metrics,
		log:     log.With("name", cfg.Name, "device", cfg.Device),
		now:     time.Now,
	}
}

// Run polls until ctx is done. Lost connections are reopened after the
// configured reconnect delay.
func (p *Poller) Run(ctx context.Context) error {
	for {
		err := p.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		p.log.Warn("sensor session ended", "error", err, "retry_in", p.cfg.ReconnectDelay)
		if !sleepCtx(ctx, p.cfg.ReconnectDelay) {
			return nil
		}
	}
}

func (p *Poller) session(ctx context.Context) error {
	port, err := p.open(p.cfg)
	if err != nil {
		return errors.Wrap(err, "open port")
	}
	defer port.Close()

	conn := pms5003.NewConn(port)
	if err := conn.SleepSet(pms5003.Wakeup); err != nil {
		p.fail(err)
		return errors.Wrap(err, "wake up")
	}
	p.log.Info("sensor woken, warming up", "warmup", p.cfg.Warmup)
	if !sleepCtx(ctx, p.cfg.Warmup) {
		return ctx.Err()
	}

	// センサーが起動直後に送ってきたデータを捨てる
	if err := port.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	mode := p.cfg.DataMode()
	if err := p.setDataMode(conn, port, mode); err != nil {
		p.fail(err)
		return errors.Wrapf(err, "set %s mode", mode)
	}
	p.log.Info("sensor ready", "mode", mode, "interval", p.cfg.Interval)

	read := conn.GetPassiveMeasurement
	if mode == pms5003.DataModeActive {
		read = func() (pms5003.Measurement, error) {
			return p.readActive(conn, port)
		}
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		if err := p.poll(read, port); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			p.sleep(conn, port)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// setDataMode switches the sensor's mode. A sensor that starts up streaming
// can put a measurement frame ahead of the response, so after a framing error
// the input is dropped and the command sent again.
func (p *Poller) setDataMode(conn *pms5003.Conn, port sensorPort, mode pms5003.DataMode) error {
	var err error
	for i := 0; i < setupAttempts; i++ {
		if err = conn.SetDataMode(mode); err == nil || !pms5003.IsFramingError(err) {
			return err
		}
		p.log.Debug("mode response out of step, resending", "error", err)
		if ferr := port.Flush(); ferr != nil {
			return errors.Wrap(ferr, "flush")
		}
	}
	return err
}

// readActive takes the freshest streamed frame: input queued since the last
// poll is dropped, and a frame cut by the flush is skipped. A read timeout is
// retried too, since a stable-mode sensor can go StableModeInterval between
// frames.
func (p *Poller) readActive(conn *pms5003.Conn, port sensorPort) (pms5003.Measurement, error) {
	var err error
	for i := 0; i < activeReadAttempts; i++ {
		if ferr := port.Flush(); ferr != nil {
			return pms5003.Measurement{}, errors.Wrap(ferr, "flush")
		}
		var m pms5003.Measurement
		m, err = conn.GetActiveMeasurement()
		if err == nil {
			return m, nil
		}
		if !pms5003.IsFramingError(err) && !errors.Is(err, serialport.ErrTimeout) {
			return m, err
		}
		p.log.Debug("no whole frame, retrying", "error", err)
	}
	return pms5003.Measurement{}, err
}

// poll performs one read. Only transport failures end the session; anything
// else is counted and the next tick tries again.
func (p *Poller) poll(read func() (pms5003.Measurement, error), port sensorPort) error {
	m, err := read()
	if err == nil && isEmpty(m) {
		err = pms5003.ErrEmptyData
	}
	switch {
	case err == nil:
		p.metrics.Observe(p.cfg.Device, p.cfg.Name, m, p.now())
		p.log.Debug("measurement",
			"pm1_0", m.PM1p0Atm, "pm2_5", m.PM2p5Atm, "pm10", m.PM10Atm,
			"gt_0_3um", m.Gt0p3um)
		return nil
	case errors.Is(err, pms5003.ErrEmptyData):
		p.fail(err)
		p.log.Warn("empty measurement, sensor not ready?")
		return nil
	case pms5003.IsFramingError(err), errors.Is(err, pms5003.ErrUnexpectedResponse):
		p.fail(err)
		p.log.Warn("bad frame, resynchronizing", "error", err)
		if ferr := port.Flush(); ferr != nil {
			return errors.Wrap(ferr, "flush")
		}
		return nil
	default:
		p.fail(err)
		return errors.Wrap(err, "read measurement")
	}
}

func (p *Poller) sleep(conn *pms5003.Conn, port sensorPort) {
	if !p.cfg.SleepOnExit {
		return
	}
	if err := port.Flush(); err != nil {
		p.log.Warn("flush before sleep failed", "error", err)
	}
	if err := conn.SleepSet(pms5003.Sleep); err != nil {
		p.log.Warn("failed to put sensor to sleep", "error", err)
		return
	}
	p.log.Info("sensor put to sleep")
}

func (p *Poller) fail(err error) {
	p.metrics.Fail(p.cfg.Device, p.cfg.Name, err)
}

// isEmpty reports an all-zero measurement, which the sensor sends while its
// fan is still spinning up.
func isEmpty(m pms5003.Measurement) bool {
	return m == pms5003.Measurement{}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
