package display

import (
	"image"
	"time"

	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/logger"
)

// Controller applies PowerState transitions to a Device.
type Controller struct {
	device     Device
	state      *PowerState
	brightness Brightness
}

// NewController sets the initial brightness on the device.
func NewController(device Device, state *PowerState, initial Brightness) (*Controller, error) {
	c := &Controller{
		device: device,
		state:  state,
	}

	if err := c.setBrightness(initial); err != nil {
		return nil, err
	}
	logger.Info().Stringer("brightness", initial).Msg("Display initialized")

	return c, nil
}

// Update advances the power state to now and performs the resulting
// hardware writes. Any write failure is returned.
func (c *Controller) Update(now time.Time) (Transitions, error) {
	errFactory := errors.New()
	t := c.state.Advance(now)

	if t.Dim {
		logger.Info().Msg("Screen timeout reached. Dimming display.")
		if err := c.setBrightness(Dimmest); err != nil {
			return t, err
		}
	}

	if t.PowerOff {
		logger.Debug().Msg("Periodic off: turning display off")
		if err := c.device.PowerOff(); err != nil {
			return t, errFactory.Wrap(ErrPowerFailed, err)
		}
	}

	if t.PowerOn {
		logger.Debug().Msg("Periodic on: turning display on")
		if err := c.device.PowerOn(); err != nil {
			return t, errFactory.Wrap(ErrPowerFailed, err)
		}
	}

	if t.Shift {
		offset := c.state.Offset()
		logger.Debug().
			Int("x", offset.X).
			Int("y", offset.Y).
			Msg("Shifting display pixels")
	}

	return t, nil
}

// Render draws frame when the display is in its on phase. It is a
// no-op while the panel is powered down.
func (c *Controller) Render(frame Frame) error {
	if !c.state.IsOn() {
		return nil
	}

	if err := Render(c.device, frame, c.state.Offset()); err != nil {
		return errors.New().Wrap(ErrRenderFailed, err)
	}

	return nil
}

func (c *Controller) setBrightness(level Brightness) error {
	if err := c.device.SetBrightness(level); err != nil {
		return errors.New().Wrap(ErrBrightnessFailed, err)
	}
	c.brightness = level

	return nil
}

func (c *Controller) IsOn() bool {
	return c.state.IsOn()
}

func (c *Controller) Dimmed() bool {
	return c.state.Dimmed()
}

func (c *Controller) Offset() image.Point {
	return c.state.Offset()
}

func (c *Controller) ShiftIndex() int {
	return c.state.ShiftIndex()
}

func (c *Controller) Brightness() Brightness {
	return c.brightness
}
