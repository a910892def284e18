package display

import (
	"image"
	"time"
)

// ShiftPattern is the cycle of pixel offsets applied to rendered text.
// Every position stays inside a 2x2 square so the layout never moves
// more than one pixel.
var ShiftPattern = [...]image.Point{
	{X: 0, Y: 0},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
}

type PowerConfig struct {
	// ScreenTimeout dims the panel once after start; zero disables it
	ScreenTimeout time.Duration
	PeriodicOff   bool
	OnDuration    time.Duration
	OffDuration   time.Duration
	ShiftInterval time.Duration
}

// Transitions lists what changed during one Advance
type Transitions struct {
	Dim      bool
	PowerOff bool
	PowerOn  bool
	Shift    bool
}

func (t Transitions) Any() bool {
	return t.Dim || t.PowerOff || t.PowerOn || t.Shift
}

// PowerState tracks the display's timed state: the one-shot timeout
// dim, the periodic on/off cycle, and the anti burn-in shift. It does
// no I/O and takes the current time as an argument.
type PowerState struct {
	cfg PowerConfig

	start      time.Time
	lastToggle time.Time
	lastShift  time.Time

	dimmed     bool
	periodicOn bool
	shiftIndex int
}

func NewPowerState(cfg PowerConfig, start time.Time) *PowerState {
	return &PowerState{
		cfg:        cfg,
		start:      start,
		lastToggle: start,
		lastShift:  start,
		periodicOn: true,
	}
}

// Advance evaluates the timeout dim, the periodic toggle and the pixel
// shift, in that order, against now.
func (s *PowerState) Advance(now time.Time) Transitions {
	var t Transitions

	if s.cfg.ScreenTimeout > 0 && !s.dimmed && now.Sub(s.start) >= s.cfg.ScreenTimeout {
		s.dimmed = true
		t.Dim = true
	}

	if s.cfg.PeriodicOff {
		phase := s.cfg.OnDuration
		if !s.periodicOn {
			phase = s.cfg.OffDuration
		}
		if now.Sub(s.lastToggle) >= phase {
			s.periodicOn = !s.periodicOn
			s.lastToggle = now
			t.PowerOn = s.periodicOn
			t.PowerOff = !s.periodicOn
		}
	}

	if s.cfg.ShiftInterval > 0 && now.Sub(s.lastShift) >= s.cfg.ShiftInterval {
		s.shiftIndex = (s.shiftIndex + 1) % len(ShiftPattern)
		s.lastShift = now
		t.Shift = true
	}

	return t
}

func (s *PowerState) Dimmed() bool {
	return s.dimmed
}

// IsOn reports whether the periodic cycle is in its on phase. Always
// true when periodic power cycling is disabled.
func (s *PowerState) IsOn() bool {
	return s.periodicOn
}

func (s *PowerState) ShiftIndex() int {
	return s.shiftIndex
}

func (s *PowerState) Offset() image.Point {
	return ShiftPattern[s.shiftIndex]
}
