package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig           ErrorCode = "invalid_configuration"
	ErrBindFlags               ErrorCode = "bind_flags_failed"
	ErrReadConfig              ErrorCode = "read_config_failed"
	ErrWriteConfig             ErrorCode = "write_config_failed"
	ErrInvalidInterval         ErrorCode = "invalid_interval"
	ErrInvalidPeriodicDuration ErrorCode = "invalid_periodic_duration"
	ErrInvalidDriver           ErrorCode = "invalid_driver"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Application errors
	ErrInitApp   ErrorCode = "init_app_failed"
	ErrMainLoop  ErrorCode = "main_loop_failed"
	ErrInitHost  ErrorCode = "init_host_failed"
	ErrOpenFan   ErrorCode = "open_fan_failed"
	ErrOpenPanel ErrorCode = "open_display_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"

	// Metrics errors
	ErrInitMetrics    ErrorCode = "init_metrics_failed"
	ErrCollectMetrics ErrorCode = "collect_metrics_failed"
	ErrCloseMetrics   ErrorCode = "close_metrics_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:                "Internal error occurred",
	ErrInvalidArgument:         "Invalid argument provided",
	ErrAlreadyRunning:          "Another instance is already running",
	ErrInvalidConfig:           "Invalid configuration",
	ErrBindFlags:               "Failed to bind flags",
	ErrReadConfig:              "Failed to read config file",
	ErrWriteConfig:             "Failed to write default config file",
	ErrInvalidInterval:         "Invalid interval value",
	ErrInvalidPeriodicDuration: "Invalid periodic on/off duration",
	ErrInvalidDriver:           "Unknown device driver",
	ErrInvalidLogLevel:         "Invalid log level",
	ErrInitFailed:              "Initialization failed",
	ErrShutdownFailed:          "Shutdown failed",
	ErrInitApp:                 "Failed to initialize application",
	ErrMainLoop:                "Error in main loop",
	ErrInitHost:                "Failed to initialize host drivers",
	ErrOpenFan:                 "Failed to open fan device",
	ErrOpenPanel:               "Failed to open display device",
	ErrOperationFailed:         "Operation failed",
	ErrTimeout:                 "Operation timed out",
	ErrInitMetrics:             "Failed to initialize metrics",
	ErrCollectMetrics:          "Failed to collect metrics data",
	ErrCloseMetrics:            "Failed to close metrics connection",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
