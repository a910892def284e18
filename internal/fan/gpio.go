package fan

import (
	"codeberg.org/mutker/poemon/internal/errors"
	"github.com/warthog618/go-gpiocdev"
)

type outputLine interface {
	SetValue(value int) error
	Close() error
}

// GPIOLine drives a fan wired straight to a SoC GPIO through the
// character device interface.
type GPIOLine struct {
	line      outputLine
	activeLow bool
}

// OpenGPIOLine requests offset on chip as an output held in the off state.
func OpenGPIOLine(chip string, offset int, activeLow bool) (*GPIOLine, error) {
	g := &GPIOLine{activeLow: activeLow}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(g.level(false)),
		gpiocdev.WithConsumer("poemon-fan"))
	if err != nil {
		return nil, errors.New().Wrap(ErrOpenFailed, err)
	}
	g.line = line

	return g, nil
}

func (g *GPIOLine) level(on bool) int {
	if on != g.activeLow {
		return 1
	}
	return 0
}

func (g *GPIOLine) On() error {
	return g.line.SetValue(g.level(true))
}

func (g *GPIOLine) Off() error {
	return g.line.SetValue(g.level(false))
}

func (g *GPIOLine) Close() error {
	if err := g.line.Close(); err != nil {
		return errors.New().Wrap(ErrCloseFailed, err)
	}
	return nil
}
