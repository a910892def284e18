package fan

import "codeberg.org/mutker/poemon/internal/errors"

const (
	// Threshold errors
	ErrNonPositiveThreshold = errors.ErrorCode("fan_non_positive_threshold")
	ErrInvertedThresholds   = errors.ErrorCode("fan_inverted_thresholds")

	// Device errors
	ErrOpenFailed  = errors.ErrorCode("fan_open_failed")
	ErrWriteFailed = errors.ErrorCode("fan_write_failed")
	ErrCloseFailed = errors.ErrorCode("fan_close_failed")
)
