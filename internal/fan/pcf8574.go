package fan

import (
	"codeberg.org/mutker/poemon/internal/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// DefaultPCF8574Address is the expander address with A0-A2 tied low
const DefaultPCF8574Address = 0x20

// PCF8574 drives one line of a PCF8574 I/O expander. The fan transistor
// is active-low: pulling the line low starts the fan. All other lines
// are kept high so they stay usable as inputs.
type PCF8574 struct {
	bus  i2c.BusCloser
	dev  *i2c.Dev
	mask byte
}

// OpenPCF8574 opens the named periph I2C bus ("1" for /dev/i2c-1).
// host.Init must have been called.
func OpenPCF8574(busName string, addr uint16, pin int) (*PCF8574, error) {
	errFactory := errors.New()

	if pin < 0 || pin > 7 {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "expander pin out of range")
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, errFactory.Wrap(ErrOpenFailed, err)
	}

	return NewPCF8574(bus, addr, pin), nil
}

// NewPCF8574 takes ownership of bus.
func NewPCF8574(bus i2c.BusCloser, addr uint16, pin int) *PCF8574 {
	return &PCF8574{
		bus:  bus,
		dev:  &i2c.Dev{Bus: bus, Addr: addr},
		mask: 1 << uint(pin),
	}
}

func (p *PCF8574) On() error {
	return p.write(0xFF &^ p.mask)
}

func (p *PCF8574) Off() error {
	return p.write(0xFF)
}

func (p *PCF8574) write(port byte) error {
	return p.dev.Tx([]byte{port}, nil)
}

func (p *PCF8574) Close() error {
	if err := p.bus.Close(); err != nil {
		return errors.New().Wrap(ErrCloseFailed, err)
	}
	return nil
}
