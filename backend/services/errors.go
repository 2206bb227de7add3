package services

// Stable machine-readable error codes returned to API clients.
const (
	CodeNotFound             = "not_found"
	CodeForbidden            = "forbidden"
	CodeAttemptLimitExceeded = "attempt_limit_exceeded"
	CodeTimeLimitExceeded    = "time_limit_exceeded"
	CodeInvalidState         = "invalid_state"
	CodeValidation           = "validation_error"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func ErrNotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func ErrForbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

func ErrAttemptLimitExceeded(message string) *Error {
	return &Error{Code: CodeAttemptLimitExceeded, Message: message}
}

func ErrTimeLimitExceeded(message string) *Error {
	return &Error{Code: CodeTimeLimitExceeded, Message: message}
}

func ErrInvalidState(message string) *Error {
	return &Error{Code: CodeInvalidState, Message: message}
}

func ErrValidation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}
