package errors

// Common error codes
const (
	// System errors
	ErrInternal    ErrorCode = "internal_error"
	ErrUnavailable ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrParseFlags      ErrorCode = "parse_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrInvalidRate     ErrorCode = "invalid_rate"
	ErrInvalidScale    ErrorCode = "invalid_meter_scale"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Application errors
	ErrInitApp      ErrorCode = "init_app_failed"
	ErrRenderLoop   ErrorCode = "render_loop_failed"
	ErrMetricsServe ErrorCode = "metrics_server_failed"

	// Operation errors
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrUnavailable:      "Service unavailable",
	ErrInvalidConfig:    "Invalid configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrParseFlags:       "Failed to parse flags",
	ErrReadConfig:       "Failed to read config file",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInvalidRate:      "Invalid rate or size",
	ErrInvalidScale:     "Invalid meter scale",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrAlreadyRunning:   "Another instance is already running",
	ErrInitApp:          "Failed to initialize application",
	ErrRenderLoop:       "Error in render loop",
	ErrMetricsServe:     "Metrics server failed",
	ErrTimeout:          "Operation timed out",
	ErrInvalidOperation: "Invalid operation",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
