package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/poemon/internal/config"
	"codeberg.org/mutker/poemon/internal/display"
	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/fan"
	"codeberg.org/mutker/poemon/internal/logger"
	"codeberg.org/mutker/poemon/internal/metrics"
	"codeberg.org/mutker/poemon/internal/monitor"
	"codeberg.org/mutker/poemon/internal/pid"
	"codeberg.org/mutker/poemon/internal/sensor"
	"github.com/jonboulle/clockwork"
	"periph.io/x/host/v3"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Printf("poemon %s\n", version)
		return
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cfg.Created {
		logger.Info().Str("path", cfg.Path).Msg("Created default config file")
	}
	logger.Debug().Str("path", cfg.Path).Msg("Config loaded")

	if err := run(cfg); err != nil {
		logError(err, "poemon stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	errFactory := errors.New()

	pidFile := pid.Default()
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logError(err, "Failed to remove PID file")
		}
	}()

	if cfg.Display.Driver == config.DisplayDriverSSD1306 || cfg.Fan.Driver == config.FanDriverPCF8574 {
		if _, err := host.Init(); err != nil {
			return errFactory.Wrap(errors.ErrInitHost, err)
		}
	}

	fanDevice, err := openFan(cfg.Fan)
	if err != nil {
		return errFactory.Wrap(errors.ErrOpenFan, err)
	}
	defer closeDevice(fanDevice, "fan")

	fanController, err := fan.New(fanDevice, cfg.Fan.TempOn, cfg.Fan.TempOff)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	// the expander powers up in an unknown state
	if err := fanController.Off(); err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	panel, err := openDisplay(cfg.Display)
	if err != nil {
		return errFactory.Wrap(errors.ErrOpenPanel, err)
	}
	defer closeDevice(panel, "display")

	clk := clockwork.NewRealClock()
	state := display.NewPowerState(display.PowerConfig{
		ScreenTimeout: cfg.Display.TimeoutDuration(),
		PeriodicOff:   cfg.Display.EnablePeriodicOff,
		OnDuration:    cfg.Display.OnDuration(),
		OffDuration:   cfg.Display.OffDuration(),
		ShiftInterval: cfg.Display.ShiftDuration(),
	}, clk.Now())

	displayController, err := display.NewController(panel, state, display.ParseBrightness(cfg.Display.Brightness))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	collector, err := metrics.NewService(metrics.Config{
		DBPath:       cfg.Metrics.DBPath,
		BatchSize:    cfg.Metrics.BatchSize,
		BatchTimeout: cfg.Metrics.BatchTimeoutDuration(),
		Enabled:      cfg.Metrics.Enabled,
	}, logger.Default())
	if err != nil {
		return errFactory.Wrap(errors.ErrInitMetrics, err)
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logError(err, "Failed to close metrics")
		}
	}()

	sampler := sensor.New(sensor.Options{
		TemperatureSensor: cfg.Sensors.TemperatureSensor,
		DiskPath:          cfg.Sensors.DiskPath,
		Interface:         cfg.Sensors.Interface,
		HostProc:          cfg.Sensors.HostProc,
		HostSys:           cfg.Sensors.HostSys,
	})

	mon, err := monitor.New(sampler, fanController, displayController, monitor.Options{
		Clock:            clk,
		Interval:         cfg.Display.RefreshInterval(),
		DiskRefreshTicks: cfg.Sensors.DiskRefreshTicks,
		IPRefreshTicks:   cfg.Sensors.IPRefreshTicks,
		Metrics:          collector,
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	logger.Info().
		Str("version", version).
		Str("display", cfg.Display.Driver).
		Str("fan", cfg.Fan.Driver).
		Float64("temp_on", cfg.Fan.TempOn).
		Float64("temp_off", cfg.Fan.TempOff).
		Msg("poemon started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := mon.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Exiting...")

	return nil
}

func openFan(cfg config.FanConfig) (fan.Device, error) {
	switch cfg.Driver {
	case config.FanDriverGPIO:
		return fan.OpenGPIOLine(cfg.GPIOChip, cfg.GPIOLine, cfg.ActiveLow)
	default:
		return fan.OpenPCF8574(cfg.I2CBus, uint16(cfg.Address), cfg.Pin)
	}
}

func openDisplay(cfg config.DisplayConfig) (display.Device, error) {
	switch cfg.Driver {
	case config.DisplayDriverTerminal:
		return display.NewTerminal(os.Stdout, display.Width, display.Height), nil
	default:
		return display.OpenSSD1306(cfg.I2CBus, uint16(cfg.Address), display.Width, display.Height)
	}
}

type closer interface {
	Close() error
}

func closeDevice(c closer, name string) {
	if err := c.Close(); err != nil {
		logger.Error().Err(err).Str("device", name).Msg("Failed to close device")
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func logError(err error, msg string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		logger.ErrorWithCode(appErr).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
}
