package sensor

import (
	"context"
	"fmt"

	"codeberg.org/mutker/poemon/internal/logger"
	"github.com/shirou/gopsutil/v4/common"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/net"
)

const (
	DefaultTemperatureSensor = "cpu_thermal"
	DefaultDiskPath          = "/"

	// UnknownAddress is reported when no usable IPv4 address is found
	UnknownAddress = "0.0.0.0"
)

// Stats is one sample of the values shown on the display
type Stats struct {
	IPAddress   string
	CPUUsage    float64
	Temperature float64
	RAMUsage    float64
	DiskUsage   float64
}

// FormatValue renders a reading the way the display shows it
func FormatValue(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

type Options struct {
	// TemperatureSensor selects the reading by sensor key, for example
	// cpu_thermal; empty takes the first sensor found
	TemperatureSensor string
	DiskPath          string
	// Interface restricts the address lookup; empty means any
	Interface string
	// HostProc and HostSys replace /proc and /sys, for running in a
	// container with the host's trees mounted elsewhere
	HostProc string
	HostSys  string
}

// Sampler reads system statistics through gopsutil. Read failures are
// logged and reported as zero values so a flaky sensor never stops the
// control loop.
type Sampler struct {
	env       common.EnvMap
	sensorKey string
	diskPath  string
	iface     string

	interfaces func(ctx context.Context) (net.InterfaceStatList, error)
	diskUsage  func(ctx context.Context, path string) (*disk.UsageStat, error)

	prevCPU *cpu.TimesStat
}

func New(opts Options) *Sampler {
	s := &Sampler{
		env:        common.EnvMap{},
		sensorKey:  opts.TemperatureSensor,
		diskPath:   opts.DiskPath,
		iface:      opts.Interface,
		interfaces: net.InterfacesWithContext,
		diskUsage:  disk.UsageWithContext,
	}
	if s.diskPath == "" {
		s.diskPath = DefaultDiskPath
	}
	if opts.HostProc != "" {
		s.env[common.HostProcEnvKey] = opts.HostProc
	}
	if opts.HostSys != "" {
		s.env[common.HostSysEnvKey] = opts.HostSys
	}

	// baseline so the first CPUUsage covers the time since start
	baseline, err := readCPUTimes(s.context())
	if err != nil {
		logger.Debug().Err(err).Msg("No CPU baseline, first usage reads as zero")
	}
	s.prevCPU = baseline

	return s
}

// context carries the host roots to gopsutil
func (s *Sampler) context() context.Context {
	return context.WithValue(context.Background(), common.EnvKey, s.env)
}

// CPUTemperature returns the SoC temperature in degrees Celsius, or 0
// if no matching sensor can be read.
func (s *Sampler) CPUTemperature() float64 {
	temp, err := readTemperature(s.context(), s.sensorKey)
	if err != nil {
		logger.Warn().Err(err).Str("sensor", s.sensorKey).Msg("Failed to read CPU temperature")
		return 0
	}
	return temp
}

// CPUUsage returns the busy share of all CPUs since the previous call,
// in percent.
func (s *Sampler) CPUUsage() float64 {
	current, err := readCPUTimes(s.context())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read CPU usage")
		return 0
	}

	usage := cpuPercent(s.prevCPU, current)
	s.prevCPU = current

	return usage
}

// RAMUsage returns used memory as a percentage of total memory
func (s *Sampler) RAMUsage() float64 {
	usage, err := readMemoryUsage(s.context())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read memory usage")
		return 0
	}
	return usage
}

// DiskUsage returns the used share of the filesystem holding the
// configured path, in percent.
func (s *Sampler) DiskUsage() float64 {
	usage, err := readDiskUsage(s.context(), s.diskUsage, s.diskPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", s.diskPath).Msg("Failed to read disk usage")
		return 0
	}
	return usage
}

// IPAddress returns the first IPv4 address of an up, non-loopback
// interface, or UnknownAddress.
func (s *Sampler) IPAddress() string {
	ip, err := firstIPv4(s.context(), s.interfaces, s.iface)
	if err != nil {
		logger.Debug().Err(err).Msg("No IPv4 address available")
		return UnknownAddress
	}
	return ip
}
