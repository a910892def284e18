package monitor

import "codeberg.org/mutker/poemon/internal/errors"

const (
	ErrInvalidOptions = errors.ErrorCode("monitor_invalid_options")
	ErrDisplayUpdate  = errors.ErrorCode("monitor_display_update_failed")
	ErrFanUpdate      = errors.ErrorCode("monitor_fan_update_failed")
	ErrRender         = errors.ErrorCode("monitor_render_failed")
)
