package display

import (
	"image"

	"codeberg.org/mutker/poemon/internal/logger"
)

// Panel geometry the layout is designed for
const (
	Width  = 128
	Height = 32
)

// Device is a monochrome panel with a local frame buffer. Drawing only
// touches the buffer; Flush pushes it to the panel.
type Device interface {
	Clear() error
	// DrawText draws text with its baseline starting at pos and returns
	// the pen position after the last glyph.
	DrawText(text string, pos image.Point, style Style) (image.Point, error)
	Flush() error
	SetBrightness(level Brightness) error
	PowerOn() error
	PowerOff() error
	Close() error
}

// Style selects the face used for a piece of text
type Style int

const (
	// StyleValue is used for numbers and the address line
	StyleValue Style = iota
	// StyleLabel is the small face for units and captions
	StyleLabel
)

// Brightness is one of five panel brightness steps
type Brightness uint8

const (
	Dimmest Brightness = iota
	Dim
	Normal
	Bright
	Brightest
)

var brightnessNames = [...]string{"dimmest", "dim", "normal", "bright", "brightest"}

func (b Brightness) String() string {
	if int(b) < len(brightnessNames) {
		return brightnessNames[b]
	}
	return "unknown"
}

// ParseBrightness maps a configured level to a Brightness. Values
// outside 0-4 fall back to Dimmest.
func ParseBrightness(level int) Brightness {
	if level < int(Dimmest) || level > int(Brightest) {
		logger.Warn().
			Int("brightness", level).
			Msg("Invalid brightness value in config, defaulting to dimmest")
		return Dimmest
	}
	return Brightness(level)
}

// Frame is the text content of one rendered screen
type Frame struct {
	IPAddress   string
	CPUUsage    string
	Temperature string
	RAMUsage    string
	DiskUsage   string
}
