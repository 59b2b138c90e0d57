package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"pms5003-exporter/pms5003"
)

// SensorConfig describes one PMS5003 on one serial port.
type SensorConfig struct {
	Name           string        `mapstructure:"name"`
	Device         string        `mapstructure:"device"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	Mode           string        `mapstructure:"mode"`
	Interval       time.Duration `mapstructure:"interval"`
	Warmup         time.Duration `mapstructure:"warmup"`
	ReconnectDelay time.Duration `mapstructure:"reconnectDelay"`
	SleepOnExit    bool          `mapstructure:"sleepOnExit"`
}

// DataMode returns the configured acquisition mode.
func (s SensorConfig) DataMode() pms5003.DataMode {
	if strings.EqualFold(s.Mode, "active") {
		return pms5003.DataModeActive
	}
	return pms5003.DataModePassive
}

type LogFileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

type Config struct {
	Log     LogConfig      `mapstructure:"log"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Sensors []SensorConfig `mapstructure:"sensors"`
}

// defaultSensor fills the fields a sensor entry may leave out.
var defaultSensor = SensorConfig{
	Name:           "pms5003",
	Device:         "/dev/ttyAMA0",
	ReadTimeout:    2 * time.Second,
	Mode:           "passive",
	Interval:       30 * time.Second,
	Warmup:         pms5003.WakeupFanSpinUp,
	ReconnectDelay: 5 * time.Second,
}

// activeReadTimeout is the read timeout for active sensors that set none. A
// streamed frame can be up to StableModeInterval away.
const activeReadTimeout = pms5003.StableModeInterval + time.Second

// LoadConfig reads the YAML file at path, falling back to PMS5003_CONFIG and
// then ./pms5003.yaml or ./configs/pms5003.yaml. A missing file is not an
// error. Keys can be overridden by environment variables prefixed PMS5003_.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("PMS5003")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("pms5003")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if len(cfg.Sensors) == 0 {
		cfg.Sensors = []SensorConfig{defaultSensor}
	}
	for i := range cfg.Sensors {
		cfg.Sensors[i].applyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.maxSize", 10)
	v.SetDefault("log.file.maxBackups", 3)
	v.SetDefault("log.file.maxAge", 28)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("metrics.addr", ":8000")
	v.SetDefault("metrics.path", "/metrics")
}

func (s *SensorConfig) applyDefaults() {
	if s.Device == "" {
		s.Device = defaultSensor.Device
	}
	if s.Name == "" {
		s.Name = s.Device
	}
	if s.Mode == "" {
		s.Mode = defaultSensor.Mode
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = defaultSensor.ReadTimeout
		if s.DataMode() == pms5003.DataModeActive {
			s.ReadTimeout = activeReadTimeout
		}
	}
	if s.Interval == 0 {
		s.Interval = defaultSensor.Interval
	}
	if s.Warmup <= 0 {
		s.Warmup = defaultSensor.Warmup
	}
	if s.ReconnectDelay <= 0 {
		s.ReconnectDelay = defaultSensor.ReconnectDelay
	}
}

// Validate checks the sensor list after defaults have been applied.
func (c *Config) Validate() error {
	if len(c.Sensors) == 0 {
		return errors.New("config: no sensors configured")
	}
	seen := make(map[string]bool, len(c.Sensors))
	for _, s := range c.Sensors {
		if seen[s.Name] {
			return errors.Errorf("config: duplicate sensor name %q", s.Name)
		}
		seen[s.Name] = true

		if s.Device == "" {
			return errors.Errorf("config: sensor %q has no device", s.Name)
		}
		switch strings.ToLower(s.Mode) {
		case "passive", "active":
		default:
			return errors.Errorf("config: sensor %q: unknown mode %q", s.Name, s.Mode)
		}
		if s.Interval < pms5003.StableModeInterval {
			return errors.Errorf("config: sensor %q: interval %s is shorter than %s", s.Name, s.Interval, pms5003.StableModeInterval)
		}
		if s.DataMode() == pms5003.DataModeActive && s.ReadTimeout <= pms5003.StableModeInterval {
			return errors.Errorf("config: sensor %q: readTimeout %s must exceed %s in active mode", s.Name, s.ReadTimeout, pms5003.StableModeInterval)
		}
	}
	return nil
}
