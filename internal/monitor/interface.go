package monitor

import (
	"time"

	"codeberg.org/mutker/poemon/internal/display"
)

// Sampler supplies the readings for one tick. Implementations recover
// from read errors themselves.
type Sampler interface {
	CPUTemperature() float64
	CPUUsage() float64
	RAMUsage() float64
	DiskUsage() float64
	IPAddress() string
}

type FanController interface {
	Update(temp float64) (bool, error)
	IsRunning() bool
}

type DisplayController interface {
	Update(now time.Time) (display.Transitions, error)
	Render(frame display.Frame) error
	IsOn() bool
	Dimmed() bool
	ShiftIndex() int
}
