package errors_test

import (
	"fmt"
	"io"
	"testing"

	"codeberg.org/mutker/poemon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	errFactory := errors.New()
	err := errFactory.Wrap(errors.ErrReadConfig, io.ErrUnexpectedEOF)

	assert.Equal(t, errors.ErrReadConfig, err.Code())
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "Failed to read config file: unexpected EOF", err.Error())
}

func TestWithMessageAndData(t *testing.T) {
	errFactory := errors.New()

	err := errFactory.WithMessage(errors.ErrInvalidConfig, "bad value")
	assert.Equal(t, "bad value", err.Error())

	err = errFactory.WithData(errors.ErrInvalidInterval, 0)
	assert.Equal(t, "Invalid interval value: 0", err.Error())
	assert.Equal(t, 0, err.GetData())
}

func TestUnknownCodeFallsBackToCode(t *testing.T) {
	err := errors.New().New(errors.ErrorCode("something_odd"))
	assert.Equal(t, "something_odd", err.Error())
}

func TestHasCode(t *testing.T) {
	errFactory := errors.New()
	inner := errFactory.Wrap(errors.ErrOperationFailed, io.EOF)
	outer := errFactory.Wrap(errors.ErrMainLoop, inner)
	wrapped := fmt.Errorf("tick: %w", outer)

	require.True(t, errors.HasCode(wrapped, errors.ErrMainLoop))
	assert.True(t, errors.HasCode(wrapped, errors.ErrOperationFailed))
	assert.False(t, errors.HasCode(wrapped, errors.ErrTimeout))
	assert.False(t, errors.HasCode(io.EOF, errors.ErrMainLoop))
	assert.False(t, errors.HasCode(nil, errors.ErrMainLoop))
}
