package display

import "codeberg.org/mutker/poemon/internal/errors"

const (
	ErrOpenFailed       = errors.ErrorCode("display_open_failed")
	ErrBrightnessFailed = errors.ErrorCode("display_brightness_failed")
	ErrPowerFailed      = errors.ErrorCode("display_power_failed")
	ErrRenderFailed     = errors.ErrorCode("display_render_failed")
	ErrUnknownStyle     = errors.ErrorCode("display_unknown_style")
	ErrCloseFailed      = errors.ErrorCode("display_close_failed")
)
