package errors

// ErrorCode identifies a class of failure in the outer layers (config,
// storage, process management). The metering and gesture core never
// produces one.
type ErrorCode string

// Error is an error carrying a code and optional structured context.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates domain errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
