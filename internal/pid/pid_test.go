package pid_test

import (
	"os"
	"strconv"
	"testing"

	"codeberg.org/mutker/poemon/internal/errors"
	"codeberg.org/mutker/poemon/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRemove(t *testing.T) {
	f := pid.New(t.TempDir())

	require.NoError(t, f.Write())
	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	require.NoError(t, f.Write(), "own PID file can be rewritten")

	require.NoError(t, f.Remove())
	assert.NoFileExists(t, f.Path())
	require.NoError(t, f.Remove(), "removing a missing file is fine")
}

func TestWriteRefusesLiveProcess(t *testing.T) {
	f := pid.New(t.TempDir())
	require.NoError(t, os.WriteFile(f.Path(), []byte(strconv.Itoa(os.Getppid())+"\n"), 0o600))

	err := f.Write()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
}

func TestWriteReplacesStaleFile(t *testing.T) {
	f := pid.New(t.TempDir())
	require.NoError(t, os.WriteFile(f.Path(), []byte("999999999"), 0o600))

	require.NoError(t, f.Write())
	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestWriteRejectsGarbage(t *testing.T) {
	f := pid.New(t.TempDir())
	require.NoError(t, os.WriteFile(f.Path(), []byte("not a pid"), 0o600))

	err := f.Write()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInternal))
}
