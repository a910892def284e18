package sensor

import "codeberg.org/mutker/poemon/internal/errors"

const (
	ErrReadFailed  = errors.ErrorCode("sensor_read_failed")
	ErrParseFailed = errors.ErrorCode("sensor_parse_failed")
	ErrNoAddress   = errors.ErrorCode("sensor_no_address")
	ErrNoSensor    = errors.ErrorCode("sensor_not_found")
)
