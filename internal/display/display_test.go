package display_test

import (
	"errors"
	"image"
	"testing"
	"time"

	"codeberg.org/mutker/poemon/internal/display"
	poerrors "codeberg.org/mutker/poemon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawCall struct {
	text  string
	pos   image.Point
	style display.Style
}

// fakeDevice records every call and can be told to fail
type fakeDevice struct {
	*display.Canvas

	calls       []string
	draws       []drawCall
	brightness  []display.Brightness
	flushes     int
	failPower   bool
	failBright  bool
	failDrawing bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{Canvas: display.NewCanvas(128, 32)}
}

func (f *fakeDevice) Clear() error {
	f.calls = append(f.calls, "clear")
	f.draws = nil
	return f.Canvas.Clear()
}

func (f *fakeDevice) DrawText(text string, pos image.Point, style display.Style) (image.Point, error) {
	if f.failDrawing {
		return pos, errors.New("draw failed")
	}
	f.draws = append(f.draws, drawCall{text, pos, style})
	return f.Canvas.DrawText(text, pos, style)
}

func (f *fakeDevice) Flush() error {
	f.calls = append(f.calls, "flush")
	f.flushes++
	return nil
}

func (f *fakeDevice) SetBrightness(level display.Brightness) error {
	if f.failBright {
		return errors.New("i2c write failed")
	}
	f.calls = append(f.calls, "brightness")
	f.brightness = append(f.brightness, level)
	return nil
}

func (f *fakeDevice) PowerOn() error {
	if f.failPower {
		return errors.New("i2c write failed")
	}
	f.calls = append(f.calls, "on")
	return nil
}

func (f *fakeDevice) PowerOff() error {
	if f.failPower {
		return errors.New("i2c write failed")
	}
	f.calls = append(f.calls, "off")
	return nil
}

func (f *fakeDevice) Close() error {
	return nil
}

var sampleFrame = display.Frame{
	IPAddress:   "192.168.1.23",
	CPUUsage:    "12.5",
	Temperature: "45.6",
	RAMUsage:    "33.1",
	DiskUsage:   "71.0",
}

func TestParseBrightness(t *testing.T) {
	tests := []struct {
		level int
		want  display.Brightness
	}{
		{0, display.Dimmest},
		{1, display.Dim},
		{2, display.Normal},
		{3, display.Bright},
		{4, display.Brightest},
		{5, display.Dimmest},
		{-1, display.Dimmest},
		{255, display.Dimmest},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, display.ParseBrightness(tt.level), "level %d", tt.level)
	}
	assert.Equal(t, "normal", display.Normal.String())
}

func TestControllerAppliesTransitions(t *testing.T) {
	dev := newFakeDevice()
	state := display.NewPowerState(display.PowerConfig{
		ScreenTimeout: 5 * time.Second,
		PeriodicOff:   true,
		OnDuration:    10 * time.Second,
		OffDuration:   20 * time.Second,
		ShiftInterval: time.Minute,
	}, epoch)

	ctrl, err := display.NewController(dev, state, display.Brightest)
	require.NoError(t, err)
	assert.Equal(t, []display.Brightness{display.Brightest}, dev.brightness)

	for i := 0; i <= 30; i++ {
		_, err := ctrl.Update(at(i))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"brightness", "brightness", "off", "on"}, dev.calls)
	assert.Equal(t, display.Dimmest, ctrl.Brightness())
	assert.True(t, ctrl.Dimmed())
	assert.True(t, ctrl.IsOn())
}

func TestControllerSkipsRenderWhileOff(t *testing.T) {
	dev := newFakeDevice()
	state := display.NewPowerState(display.PowerConfig{
		PeriodicOff:   true,
		OnDuration:    time.Second,
		OffDuration:   time.Minute,
		ShiftInterval: time.Hour,
	}, epoch)

	ctrl, err := display.NewController(dev, state, display.Normal)
	require.NoError(t, err)

	require.NoError(t, ctrl.Render(sampleFrame))
	assert.Equal(t, 1, dev.flushes)

	tr, err := ctrl.Update(at(1))
	require.NoError(t, err)
	require.True(t, tr.PowerOff)

	require.NoError(t, ctrl.Render(sampleFrame))
	assert.Equal(t, 1, dev.flushes)
}

func TestControllerPropagatesWriteFailures(t *testing.T) {
	dev := newFakeDevice()
	dev.failBright = true
	_, err := display.NewController(dev, display.NewPowerState(display.PowerConfig{ShiftInterval: time.Minute}, epoch), display.Normal)
	require.Error(t, err)
	assert.True(t, poerrors.HasCode(err, display.ErrBrightnessFailed))

	dev = newFakeDevice()
	ctrl, err := display.NewController(dev, display.NewPowerState(display.PowerConfig{
		PeriodicOff:   true,
		OnDuration:    time.Second,
		OffDuration:   time.Second,
		ShiftInterval: time.Minute,
	}, epoch), display.Normal)
	require.NoError(t, err)

	dev.failPower = true
	_, err = ctrl.Update(at(1))
	require.Error(t, err)
	assert.True(t, poerrors.HasCode(err, display.ErrPowerFailed))

	dev.failDrawing = true
	dev.failPower = false
	_, err = ctrl.Update(at(2))
	require.NoError(t, err)
	err = ctrl.Render(sampleFrame)
	require.Error(t, err)
	assert.True(t, poerrors.HasCode(err, display.ErrRenderFailed))
}

func TestRenderLayout(t *testing.T) {
	dev := newFakeDevice()

	require.NoError(t, display.Render(dev, sampleFrame, image.Point{}))
	assert.Equal(t, []string{"clear", "flush"}, dev.calls)

	texts := make(map[string]drawCall)
	for _, d := range dev.draws {
		texts[d.text] = d
	}

	ip := texts["192.168.1.23"]
	width := display.TextWidth("192.168.1.23", display.StyleValue)
	assert.Equal(t, (128-width)/2, ip.pos.X, "address is centered")

	cpu := texts["12.5%"]
	ram := texts["33.1%"]
	assert.Equal(t, cpu.pos.X+display.TextWidth("12.5", display.StyleValue), ram.pos.X+display.TextWidth("33.1", display.StyleValue),
		"left column numbers share a right edge")

	temp := texts["45.6°C"]
	disk := texts["71.0%"]
	assert.Equal(t, temp.pos.X+display.TextWidth("45.6", display.StyleValue), disk.pos.X+display.TextWidth("71.0", display.StyleValue),
		"right column numbers share a right edge")
	assert.Greater(t, temp.pos.X, cpu.pos.X)
	assert.Greater(t, ram.pos.Y, cpu.pos.Y)

	for _, label := range []string{"CPU", "RAM", "DISK"} {
		assert.Equal(t, display.StyleLabel, texts[label].style, label)
	}

	// something got drawn
	lit := 0
	b := dev.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if dev.Lit(x, y) {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
}

func TestRenderAppliesOffset(t *testing.T) {
	plain := newFakeDevice()
	shifted := newFakeDevice()

	require.NoError(t, display.Render(plain, sampleFrame, image.Point{}))
	require.NoError(t, display.Render(shifted, sampleFrame, image.Pt(1, 1)))

	require.Len(t, shifted.draws, len(plain.draws))
	for i := range plain.draws {
		assert.Equal(t, plain.draws[i].pos.Add(image.Pt(1, 1)), shifted.draws[i].pos, plain.draws[i].text)
	}
}

func TestRenderWideValuesStayOnPanel(t *testing.T) {
	dev := newFakeDevice()
	frame := display.Frame{
		IPAddress:   "255.255.255.255",
		CPUUsage:    "100.0",
		Temperature: "100.0",
		RAMUsage:    "100.0",
		DiskUsage:   "100.0",
	}

	require.NoError(t, display.Render(dev, frame, image.Pt(1, 1)))
	for _, d := range dev.draws {
		assert.GreaterOrEqual(t, d.pos.X, 0, d.text)
		assert.LessOrEqual(t, d.pos.X+display.TextWidth(d.text, d.style), 128, d.text)
	}
}

func TestCanvasUnknownStyle(t *testing.T) {
	c := display.NewCanvas(128, 32)
	_, err := c.DrawText("x", image.Pt(0, 10), display.Style(42))
	require.Error(t, err)
	assert.True(t, poerrors.HasCode(err, display.ErrUnknownStyle))
}

func TestCanvasClear(t *testing.T) {
	c := display.NewCanvas(128, 32)
	next, err := c.DrawText("88", image.Pt(0, 12), display.StyleValue)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(14, 12), next)
	assert.True(t, anyLit(c))

	require.NoError(t, c.Clear())
	assert.False(t, anyLit(c))
}

func anyLit(c *display.Canvas) bool {
	b := c.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c.Lit(x, y) {
				return true
			}
		}
	}
	return false
}

func glyphPixels(t *testing.T, text string) []bool {
	t.Helper()

	c := display.NewCanvas(16, 16)
	_, err := c.DrawText(text, image.Pt(1, 13), display.StyleValue)
	require.NoError(t, err)

	var lit []bool
	b := c.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			lit = append(lit, c.Lit(x, y))
		}
	}
	return lit
}

func TestCanvasDrawsDegreeSign(t *testing.T) {
	degree := glyphPixels(t, "°")
	assert.Contains(t, degree, true, "degree sign is visible")
	assert.NotEqual(t, glyphPixels(t, "\ufffd"), degree, "degree sign is not the replacement glyph")
	assert.Positive(t, display.TextWidth("°", display.StyleValue))

	// the sign sits in the upper half of the cell
	c := display.NewCanvas(16, 16)
	_, err := c.DrawText("°", image.Pt(1, 13), display.StyleValue)
	require.NoError(t, err)
	for y := 10; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.False(t, c.Lit(x, y), "pixel %d,%d", x, y)
		}
	}
}
