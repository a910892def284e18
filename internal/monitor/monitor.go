package monitor

import (
	"context"
	"time"

	"codeberg.org/mutker/poemon/internal/display"
	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/logger"
	"codeberg.org/mutker/poemon/internal/metrics"
	"codeberg.org/mutker/poemon/internal/sensor"
	"github.com/asecurityteam/rolling"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultDiskRefreshTicks = 60
	DefaultIPRefreshTicks   = 1
	DefaultAverageWindow    = 5
)

type Options struct {
	Clock    clockwork.Clock
	Interval time.Duration
	// DiskRefreshTicks and IPRefreshTicks set how many ticks a disk or
	// address reading is reused for
	DiskRefreshTicks int
	IPRefreshTicks   int
	// AverageWindow is the number of temperature samples averaged for
	// the metrics snapshot
	AverageWindow int
	Metrics       metrics.Collector
}

// Monitor runs the control loop: display timers, sampling, fan
// hysteresis and rendering, once per tick on a single goroutine.
type Monitor struct {
	sampler Sampler
	fan     FanController
	display DisplayController
	metrics metrics.Collector
	clock   clockwork.Clock

	interval    time.Duration
	diskEvery   uint64
	ipEvery     uint64
	window      int
	temps       *rolling.PointPolicy
	tempSamples int

	iteration uint64
	stats     sensor.Stats
}

func New(sampler Sampler, fan FanController, disp DisplayController, opts Options) (*Monitor, error) {
	errFactory := errors.New()

	if opts.Interval <= 0 {
		return nil, errFactory.WithData(ErrInvalidOptions, opts.Interval)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.DiskRefreshTicks <= 0 {
		opts.DiskRefreshTicks = DefaultDiskRefreshTicks
	}
	if opts.IPRefreshTicks <= 0 {
		opts.IPRefreshTicks = DefaultIPRefreshTicks
	}
	if opts.AverageWindow <= 0 {
		opts.AverageWindow = DefaultAverageWindow
	}
	if opts.Metrics == nil {
		collector, err := metrics.NewService(metrics.Config{}, logger.Default())
		if err != nil {
			return nil, err
		}
		opts.Metrics = collector
	}

	return &Monitor{
		sampler:   sampler,
		fan:       fan,
		display:   disp,
		metrics:   opts.Metrics,
		clock:     opts.Clock,
		interval:  opts.Interval,
		diskEvery: uint64(opts.DiskRefreshTicks),
		ipEvery:   uint64(opts.IPRefreshTicks),
		window:    opts.AverageWindow,
		temps:     rolling.NewPointPolicy(rolling.NewWindow(opts.AverageWindow)),
		stats:     sensor.Stats{IPAddress: sensor.UnknownAddress},
	}, nil
}

// Run ticks once immediately and then on every interval until ctx is
// cancelled or a tick fails.
func (m *Monitor) Run(ctx context.Context) error {
	errFactory := errors.New()

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", m.interval).Msg("Starting control loop")

	if err := m.Tick(ctx, m.clock.Now()); err != nil {
		return errFactory.Wrap(errors.ErrMainLoop, err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Uint64("iterations", m.iteration).Msg("Control loop stopped")
			return nil
		case <-ticker.Chan():
			if err := m.Tick(ctx, m.clock.Now()); err != nil {
				return errFactory.Wrap(errors.ErrMainLoop, err)
			}
		}
	}
}

// Tick performs one iteration of the control loop at now. Hardware
// write failures are returned; metrics failures are only logged.
func (m *Monitor) Tick(ctx context.Context, now time.Time) error {
	errFactory := errors.New()

	if _, err := m.display.Update(now); err != nil {
		return errFactory.Wrap(ErrDisplayUpdate, err)
	}

	m.sample()

	if _, err := m.fan.Update(m.stats.Temperature); err != nil {
		return errFactory.Wrap(ErrFanUpdate, err)
	}

	if err := m.display.Render(m.frame()); err != nil {
		return errFactory.Wrap(ErrRender, err)
	}

	m.record(ctx, now)
	m.logStatus()

	m.iteration++

	return nil
}

func (m *Monitor) sample() {
	m.stats.Temperature = m.sampler.CPUTemperature()
	m.temps.Append(m.stats.Temperature)
	if m.tempSamples < m.window {
		m.tempSamples++
	}

	m.stats.CPUUsage = m.sampler.CPUUsage()
	m.stats.RAMUsage = m.sampler.RAMUsage()

	if m.iteration%m.ipEvery == 0 {
		m.stats.IPAddress = m.sampler.IPAddress()
	}
	if m.iteration%m.diskEvery == 0 {
		m.stats.DiskUsage = m.sampler.DiskUsage()
		logger.Trace().Float64("disk_usage", m.stats.DiskUsage).Msg("Refreshed disk usage")
	}
}

func (m *Monitor) frame() display.Frame {
	return display.Frame{
		IPAddress:   m.stats.IPAddress,
		CPUUsage:    sensor.FormatValue(m.stats.CPUUsage),
		Temperature: sensor.FormatValue(m.stats.Temperature),
		RAMUsage:    sensor.FormatValue(m.stats.RAMUsage),
		DiskUsage:   sensor.FormatValue(m.stats.DiskUsage),
	}
}

// AverageTemperature is the mean of the most recent samples, at most
// AverageWindow of them.
func (m *Monitor) AverageTemperature() float64 {
	if m.tempSamples == 0 {
		return 0
	}
	// unfilled window slots hold zero
	return m.temps.Reduce(rolling.Sum) / float64(m.tempSamples)
}

func (m *Monitor) record(ctx context.Context, now time.Time) {
	snapshot := &metrics.Snapshot{
		Timestamp: now,
		System: metrics.SystemMetrics{
			CPUUsage:  m.stats.CPUUsage,
			RAMUsage:  m.stats.RAMUsage,
			DiskUsage: m.stats.DiskUsage,
		},
		Temperature: metrics.TempMetrics{
			Current: m.stats.Temperature,
			Average: m.AverageTemperature(),
		},
		Fan: metrics.FanMetrics{Running: m.fan.IsRunning()},
		Display: metrics.DisplayMetrics{
			On:         m.display.IsOn(),
			Dimmed:     m.display.Dimmed(),
			ShiftIndex: m.display.ShiftIndex(),
		},
	}

	if err := m.metrics.Record(ctx, snapshot); err != nil {
		logger.Warn().Err(err).Msg("Failed to record metrics")
	}
}

func (m *Monitor) logStatus() {
	logger.Debug().
		Uint64("iteration", m.iteration).
		Str("ip", m.stats.IPAddress).
		Float64("cpu_temp", m.stats.Temperature).
		Float64("cpu_usage", m.stats.CPUUsage).
		Float64("ram_usage", m.stats.RAMUsage).
		Float64("disk_usage", m.stats.DiskUsage).
		Bool("fan_on", m.fan.IsRunning()).
		Bool("display_on", m.display.IsOn()).
		Msg("Status")
}

// Iteration is the number of completed ticks
func (m *Monitor) Iteration() uint64 {
	return m.iteration
}

// Stats returns the values sampled by the last tick
func (m *Monitor) Stats() sensor.Stats {
	return m.stats
}
