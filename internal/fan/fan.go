package fan

import (
	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/logger"
)

// Controller drives a fan with two-threshold hysteresis. It engages at
// or above tempOn and disengages at or below tempOff; in between the
// commanded state is left alone.
type Controller struct {
	device  Device
	tempOn  float64
	tempOff float64
	running bool
}

func New(device Device, tempOn, tempOff float64) (*Controller, error) {
	errFactory := errors.New()

	if tempOn <= 0 || tempOff <= 0 {
		return nil, errFactory.WithData(ErrNonPositiveThreshold, struct {
			TempOn  float64
			TempOff float64
		}{tempOn, tempOff})
	}
	if tempOn <= tempOff {
		return nil, errFactory.WithData(ErrInvertedThresholds, struct {
			TempOn  float64
			TempOff float64
		}{tempOn, tempOff})
	}

	return &Controller{
		device:  device,
		tempOn:  tempOn,
		tempOff: tempOff,
	}, nil
}

// Update applies the hysteresis rule for one temperature sample and
// reports whether a command was sent.
func (c *Controller) Update(temp float64) (bool, error) {
	switch {
	case c.running && temp <= c.tempOff:
		return true, c.Off()
	case !c.running && temp >= c.tempOn:
		return true, c.On()
	default:
		return false, nil
	}
}

func (c *Controller) On() error {
	logger.Debug().Msg("Sending fan on signal")
	if err := c.device.On(); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err)
	}
	c.running = true

	return nil
}

func (c *Controller) Off() error {
	logger.Debug().Msg("Sending fan off signal")
	if err := c.device.Off(); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err)
	}
	c.running = false

	return nil
}

func (c *Controller) IsRunning() bool {
	return c.running
}

func (c *Controller) State() State {
	return State(c.running)
}

func (c *Controller) Thresholds() (tempOn, tempOff float64) {
	return c.tempOn, c.tempOff
}
