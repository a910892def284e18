package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// grey levels per Brightness step, in the 256 color palette
var terminalShades = [...]string{
	Dimmest:   "240",
	Dim:       "244",
	Normal:    "248",
	Bright:    "252",
	Brightest: "255",
}

// Terminal previews the panel on a text terminal using half block
// characters, two pixel rows per line. It is used on machines without
// the OLED attached.
type Terminal struct {
	*Canvas

	out        io.Writer
	renderer   *lipgloss.Renderer
	brightness Brightness
	on         bool
}

func NewTerminal(out io.Writer, width, height int) *Terminal {
	return &Terminal{
		Canvas:   NewCanvas(width, height),
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		on:       true,
	}
}

func (t *Terminal) Flush() error {
	if !t.on {
		return nil
	}

	style := t.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Foreground(lipgloss.Color(terminalShades[t.brightness]))

	_, err := fmt.Fprintln(t.out, style.Render(t.String()))
	return err
}

// String renders the frame buffer without decoration
func (t *Terminal) String() string {
	b := t.Bounds()
	var sb strings.Builder

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := t.Lit(x, y)
			bottom := y+1 < b.Max.Y && t.Lit(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
	}

	return sb.String()
}

func (t *Terminal) SetBrightness(level Brightness) error {
	if int(level) >= len(terminalShades) {
		level = Dimmest
	}
	t.brightness = level
	return nil
}

func (t *Terminal) PowerOn() error {
	t.on = true
	return nil
}

func (t *Terminal) PowerOff() error {
	t.on = false
	_, err := fmt.Fprintln(t.out, "[display off]")
	return err
}

func (t *Terminal) Close() error {
	return nil
}
