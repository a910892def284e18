package fan_test

import (
	"io"
	"testing"

	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/fan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	commands []string
	err      error
}

func (d *fakeDevice) On() error {
	if d.err != nil {
		return d.err
	}
	d.commands = append(d.commands, "on")
	return nil
}

func (d *fakeDevice) Off() error {
	if d.err != nil {
		return d.err
	}
	d.commands = append(d.commands, "off")
	return nil
}

func (*fakeDevice) Close() error { return nil }

func TestNewValidatesThresholds(t *testing.T) {
	tests := []struct {
		name    string
		tempOn  float64
		tempOff float64
		code    errors.ErrorCode
	}{
		{"zero on", 0, -5, fan.ErrNonPositiveThreshold},
		{"negative off", 60, -1, fan.ErrNonPositiveThreshold},
		{"zero off", 60, 0, fan.ErrNonPositiveThreshold},
		{"equal", 50, 50, fan.ErrInvertedThresholds},
		{"inverted", 50, 60, fan.ErrInvertedThresholds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fan.New(&fakeDevice{}, tt.tempOn, tt.tempOff)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	c, err := fan.New(&fakeDevice{}, 60, 50)
	require.NoError(t, err)
	on, off := c.Thresholds()
	assert.InDelta(t, 60, on, 1e-9)
	assert.InDelta(t, 50, off, 1e-9)
	assert.False(t, c.IsRunning(), "fan starts stopped")
}

func TestNoChatterBetweenThresholds(t *testing.T) {
	for _, start := range []float64{65, 45} {
		dev := &fakeDevice{}
		c, err := fan.New(dev, 60, 50)
		require.NoError(t, err)

		_, err = c.Update(start)
		require.NoError(t, err)
		initial := c.State()
		dev.commands = nil

		for temp := 50.01; temp < 60; temp += 0.37 {
			changed, err := c.Update(temp)
			require.NoError(t, err)
			assert.False(t, changed, "temp %.2f", temp)
			assert.Equal(t, initial, c.State(), "temp %.2f", temp)
		}
		assert.Empty(t, dev.commands, "no hardware writes between thresholds")
	}
}

func TestThresholdsAreInclusive(t *testing.T) {
	dev := &fakeDevice{}
	c, err := fan.New(dev, 60, 50)
	require.NoError(t, err)

	changed, err := c.Update(60)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, c.IsRunning())

	changed, err = c.Update(50)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, c.IsRunning())

	assert.Equal(t, []string{"on", "off"}, dev.commands)
}

func TestTemperatureSequence(t *testing.T) {
	dev := &fakeDevice{}
	c, err := fan.New(dev, 60, 50)
	require.NoError(t, err)

	var states []string
	for _, temp := range []float64{55, 61, 58, 49, 52} {
		_, err := c.Update(temp)
		require.NoError(t, err)
		states = append(states, c.State().String())
	}

	assert.Equal(t, []string{"off", "on", "on", "off", "off"}, states)
	assert.Equal(t, []string{"on", "off"}, dev.commands)
}

func TestWriteFailureKeepsState(t *testing.T) {
	dev := &fakeDevice{err: io.ErrClosedPipe}
	c, err := fan.New(dev, 60, 50)
	require.NoError(t, err)

	changed, err := c.Update(70)
	assert.True(t, changed)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, fan.ErrWriteFailed))
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
	assert.False(t, c.IsRunning(), "state must not claim a write that failed")
}
