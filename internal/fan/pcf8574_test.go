package fan_test

import (
	"testing"

	"codeberg.org/mutker/poemon/internal/fan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestPCF8574Writes(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: fan.DefaultPCF8574Address, W: []byte{0xFE}},
			{Addr: fan.DefaultPCF8574Address, W: []byte{0xFF}},
		},
	}

	dev := fan.NewPCF8574(bus, fan.DefaultPCF8574Address, 0)
	require.NoError(t, dev.On())
	require.NoError(t, dev.Off())
	require.NoError(t, dev.Close())
}

func TestPCF8574OtherPin(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x27, W: []byte{0xF7}},
		},
	}

	dev := fan.NewPCF8574(bus, 0x27, 3)
	require.NoError(t, dev.On())
	require.NoError(t, dev.Close())
}

func TestPCF8574WriteError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}

	dev := fan.NewPCF8574(bus, fan.DefaultPCF8574Address, 0)
	assert.Error(t, dev.On())
}

func TestOpenPCF8574RejectsPin(t *testing.T) {
	_, err := fan.OpenPCF8574("1", fan.DefaultPCF8574Address, 9)
	assert.Error(t, err)
}
