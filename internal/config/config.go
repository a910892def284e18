package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/poemon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName          = "poemon"
	DefaultEnvPrefix = "POEMON"
	DefaultLogLevel  = string(LogLevelInfo)
	configFileName   = "config.toml"
	defaultDirPerm   = 0o755

	// 7-bit addresses outside the reserved ranges
	minI2CAddress = 0x03
	maxI2CAddress = 0x77
)

type Config struct {
	Display  DisplayConfig `mapstructure:"display"`
	Fan      FanConfig     `mapstructure:"fan"`
	Sensors  SensorConfig  `mapstructure:"sensors"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	LogLevel string        `mapstructure:"log_level"`

	// Path is the file the configuration was read from
	Path string `mapstructure:"-"`
	// Created is set when Load wrote a default file on first run
	Created     bool `mapstructure:"-"`
	ShowVersion bool `mapstructure:"-"`
}

type DisplayConfig struct {
	Driver              string `mapstructure:"driver"`
	I2CBus              string `mapstructure:"i2c_bus"`
	Address             int    `mapstructure:"address"`
	Brightness          int    `mapstructure:"brightness"`
	ScreenTimeout       int    `mapstructure:"screen_timeout"`
	EnablePeriodicOff   bool   `mapstructure:"enable_periodic_off"`
	PeriodicOnDuration  int    `mapstructure:"periodic_on_duration"`
	PeriodicOffDuration int    `mapstructure:"periodic_off_duration"`
	RefreshIntervalMS   int    `mapstructure:"refresh_interval_ms"`
	ShiftInterval       int    `mapstructure:"shift_interval"`
}

type FanConfig struct {
	Driver    string  `mapstructure:"driver"`
	TempOn    float64 `mapstructure:"temp_on"`
	TempOff   float64 `mapstructure:"temp_off"`
	I2CBus    string  `mapstructure:"i2c_bus"`
	Address   int     `mapstructure:"address"`
	Pin       int     `mapstructure:"pin"`
	GPIOChip  string  `mapstructure:"gpio_chip"`
	GPIOLine  int     `mapstructure:"gpio_line"`
	ActiveLow bool    `mapstructure:"active_low"`
}

type SensorConfig struct {
	TemperatureSensor string `mapstructure:"temperature_sensor"`
	DiskPath          string `mapstructure:"disk_path"`
	Interface         string `mapstructure:"interface"`
	HostProc          string `mapstructure:"host_proc"`
	HostSys           string `mapstructure:"host_sys"`
	DiskRefreshTicks  int    `mapstructure:"disk_refresh_ticks"`
	IPRefreshTicks    int    `mapstructure:"ip_refresh_ticks"`
}

type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DBPath       string `mapstructure:"db_path"`
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout int    `mapstructure:"batch_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetDefault("display.driver", DisplayDriverSSD1306)
	v.SetDefault("display.i2c_bus", "1")
	v.SetDefault("display.address", 0x3C)
	v.SetDefault("display.brightness", 2)
	v.SetDefault("display.screen_timeout", 300)
	v.SetDefault("display.enable_periodic_off", false)
	v.SetDefault("display.periodic_on_duration", 10)
	v.SetDefault("display.periodic_off_duration", 20)
	v.SetDefault("display.refresh_interval_ms", 1000)
	v.SetDefault("display.shift_interval", 60)

	v.SetDefault("fan.driver", FanDriverPCF8574)
	v.SetDefault("fan.temp_on", 60.0)
	v.SetDefault("fan.temp_off", 50.0)
	v.SetDefault("fan.i2c_bus", "1")
	v.SetDefault("fan.address", 0x20)
	v.SetDefault("fan.pin", 0)
	v.SetDefault("fan.gpio_chip", "gpiochip0")
	v.SetDefault("fan.gpio_line", 14)
	v.SetDefault("fan.active_low", true)

	v.SetDefault("sensors.temperature_sensor", "cpu_thermal")
	v.SetDefault("sensors.host_proc", "")
	v.SetDefault("sensors.host_sys", "")
	v.SetDefault("sensors.disk_path", "/")
	v.SetDefault("sensors.interface", "")
	v.SetDefault("sensors.disk_refresh_ticks", 60)
	v.SetDefault("sensors.ip_refresh_ticks", 1)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.db_path", "/var/lib/poemon/metrics.db")
	v.SetDefault("metrics.batch_size", 30)
	v.SetDefault("metrics.batch_timeout", 60)
}

func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		envPrefix: DefaultEnvPrefix,
		args:      os.Args[1:],
		home:      os.Getenv("HOME"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	// Define flags
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	configFlag := fs.String("config", "", "Path to config file")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	fs.String("log-level", DefaultLogLevel, "Log level (trace, debug, info, warning, error)")
	fs.String("display-driver", DisplayDriverSSD1306, "Display driver (ssd1306, terminal)")
	fs.String("fan-driver", FanDriverPCF8574, "Fan driver (pcf8574, gpiod)")
	fs.Int("brightness", 2, "Initial display brightness (0-4)")

	// Parse flags
	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Command line flags override config file values
	for key, name := range map[string]string{
		"log_level":          "log-level",
		"display.driver":     "display-driver",
		"fan.driver":         "fan-driver",
		"display.brightness": "brightness",
	} {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	path := o.configPath
	if path == "" {
		path = *configFlag
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath(o.home)
	}

	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaults(path); err != nil {
			return nil, err
		}
		created = true
	}

	// Load configuration from file
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}
	config.Path = path
	config.Created = created
	config.ShowVersion = *versionFlag

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// defaultConfigPath falls back to the working directory when HOME is unset
func defaultConfigPath(home string) string {
	if home == "" {
		return configFileName
	}

	return filepath.Join(home, ".config", appName, configFileName)
}

func writeDefaults(path string) error {
	errFactory := errors.New()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return errFactory.Wrap(errors.ErrWriteConfig, err)
		}
	}

	d := viper.New()
	setDefaults(d)
	d.SetConfigType("toml")
	if err := d.SafeWriteConfigAs(path); err != nil {
		return errFactory.Wrap(errors.ErrWriteConfig, err)
	}

	return nil
}

// Validate checks value ranges that no later component would catch.
// Fan thresholds are checked when the fan controller is constructed.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	d := c.Display
	if d.RefreshIntervalMS <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, d.RefreshIntervalMS)
	}
	if d.ShiftInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, d.ShiftInterval)
	}
	if d.ScreenTimeout < 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, d.ScreenTimeout)
	}
	if d.EnablePeriodicOff && (d.PeriodicOnDuration <= 0 || d.PeriodicOffDuration <= 0) {
		return errFactory.WithData(errors.ErrInvalidPeriodicDuration, struct {
			On  int
			Off int
		}{d.PeriodicOnDuration, d.PeriodicOffDuration})
	}

	switch d.Driver {
	case DisplayDriverSSD1306, DisplayDriverTerminal:
	default:
		return errFactory.WithData(errors.ErrInvalidDriver, d.Driver)
	}

	switch c.Fan.Driver {
	case FanDriverPCF8574, FanDriverGPIO:
	default:
		return errFactory.WithData(errors.ErrInvalidDriver, c.Fan.Driver)
	}
	for _, addr := range []int{d.Address, c.Fan.Address} {
		if addr < minI2CAddress || addr > maxI2CAddress {
			return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("i2c address %#x out of range", addr))
		}
	}
	if c.Fan.Pin < 0 || c.Fan.Pin > 7 {
		return errFactory.WithData(errors.ErrInvalidConfig, "fan.pin must be between 0 and 7")
	}

	if c.Sensors.DiskRefreshTicks <= 0 || c.Sensors.IPRefreshTicks <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "sensor refresh ticks must be positive")
	}

	if c.Metrics.Enabled && c.Metrics.DBPath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "metrics.db_path is empty")
	}

	return nil
}

func (d DisplayConfig) TimeoutDuration() time.Duration {
	return time.Duration(d.ScreenTimeout) * time.Second
}

func (d DisplayConfig) OnDuration() time.Duration {
	return time.Duration(d.PeriodicOnDuration) * time.Second
}

func (d DisplayConfig) OffDuration() time.Duration {
	return time.Duration(d.PeriodicOffDuration) * time.Second
}

func (d DisplayConfig) RefreshInterval() time.Duration {
	return time.Duration(d.RefreshIntervalMS) * time.Millisecond
}

func (d DisplayConfig) ShiftDuration() time.Duration {
	return time.Duration(d.ShiftInterval) * time.Second
}

func (m MetricsConfig) BatchTimeoutDuration() time.Duration {
	return time.Duration(m.BatchTimeout) * time.Second
}
