package display

import (
	"image"

	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/logger"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
)

const (
	DefaultSSD1306Address = 0x3C

	cmdContrast   = 0x81
	cmdDisplayOff = 0xAE
	cmdDisplayOn  = 0xAF
	cmdPrecharge  = 0xD9
	// control byte for a command stream
	controlCommand = 0x00
)

// brightnessSettings holds the precharge phase 2 length and contrast
// for each Brightness step.
var brightnessSettings = [...]struct {
	precharge byte
	contrast  byte
}{
	Dimmest:   {0x1, 0x00},
	Dim:       {0x2, 0x2F},
	Normal:    {0x2, 0x5F},
	Bright:    {0x2, 0x9F},
	Brightest: {0x2, 0xFF},
}

// fixedAddrBus redirects every transaction to addr. The periph driver
// always talks to 0x3C; panels strapped to 0x3D need the rewrite.
type fixedAddrBus struct {
	i2c.Bus
	addr uint16
}

func (b *fixedAddrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// SSD1306 is a monochrome OLED panel on I2C. Power and brightness go
// out as raw commands; the periph driver only initializes and draws, so
// its own halt tracking never re-enables a panel that is switched off.
type SSD1306 struct {
	*Canvas

	bus i2c.BusCloser
	dev *ssd1306.Dev
	cmd *i2c.Dev
}

// OpenSSD1306 opens the named periph I2C bus. host.Init must have been
// called.
func OpenSSD1306(busName string, addr uint16, width, height int) (*SSD1306, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, errors.New().Wrap(ErrOpenFailed, err)
	}

	panel, err := NewSSD1306(bus, addr, width, height)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	return panel, nil
}

// NewSSD1306 initializes the panel and takes ownership of bus.
func NewSSD1306(bus i2c.BusCloser, addr uint16, width, height int) (*SSD1306, error) {
	target := &fixedAddrBus{Bus: bus, addr: addr}

	dev, err := ssd1306.NewI2C(target, &ssd1306.Opts{
		W: width,
		H: height,
		// 32 row panels wire COM pins sequentially
		Sequential: height == 32,
	})
	if err != nil {
		return nil, errors.New().Wrap(ErrOpenFailed, err)
	}

	logger.Debug().
		Str("bus", bus.String()).
		Uint16("address", addr).
		Int("width", width).
		Int("height", height).
		Msg("SSD1306 panel initialized")

	return &SSD1306{
		Canvas: NewCanvas(width, height),
		bus:    bus,
		dev:    dev,
		cmd:    &i2c.Dev{Bus: bus, Addr: addr},
	}, nil
}

func (s *SSD1306) Flush() error {
	if err := s.dev.Draw(s.dev.Bounds(), s.Image(), image.Point{}); err != nil {
		return errors.New().Wrap(ErrRenderFailed, err)
	}
	return nil
}

func (s *SSD1306) SetBrightness(level Brightness) error {
	if int(level) >= len(brightnessSettings) {
		level = Dimmest
	}
	settings := brightnessSettings[level]

	// phase 1 stays at one clock, phase 2 carries the setting
	if err := s.command(cmdPrecharge, settings.precharge<<4|0x1); err != nil {
		return err
	}

	return s.command(cmdContrast, settings.contrast)
}

func (s *SSD1306) PowerOn() error {
	return s.command(cmdDisplayOn)
}

func (s *SSD1306) PowerOff() error {
	return s.command(cmdDisplayOff)
}

func (s *SSD1306) Close() error {
	if err := s.bus.Close(); err != nil {
		return errors.New().Wrap(ErrCloseFailed, err)
	}
	return nil
}

func (s *SSD1306) command(cmds ...byte) error {
	return s.cmd.Tx(append([]byte{controlCommand}, cmds...), nil)
}
