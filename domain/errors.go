package domain

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeConfigError        = "CONFIG_ERROR"
	ErrCodeOutputError        = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeServerError        = "SERVER_ERROR"
	ErrCodeUnknownQualityGate = "UNKNOWN_QUALITY_GATE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewValidationError creates an invalid input error without a cause
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewBadRequestError creates an error for a request the server refused as malformed,
// or one that could not be built at all (bad server URL, missing project key).
func NewBadRequestError(message string, cause error) error {
	return NewDomainError(ErrCodeBadRequest, message, cause)
}

// NewServerError creates an error for transport failures and unusable server answers
func NewServerError(message string, cause error) error {
	return NewDomainError(ErrCodeServerError, message, cause)
}

// NewUnknownQualityGateError creates the error returned when no quality gate
// can be resolved for a project
func NewUnknownQualityGateError(gate string) error {
	if gate == "" {
		return NewDomainError(ErrCodeUnknownQualityGate, "no quality gate bound to the project and no default quality gate", nil)
	}
	return NewDomainError(ErrCodeUnknownQualityGate, fmt.Sprintf("unknown quality gate: %s", gate), nil)
}

// ErrorCode returns the code of the first DomainError in err's chain, or "".
func ErrorCode(err error) string {
	var domainErr DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsBadRequest reports whether err is a bad request error
func IsBadRequest(err error) bool {
	return ErrorCode(err) == ErrCodeBadRequest
}

// IsServerError reports whether err is a server or transport error
func IsServerError(err error) bool {
	return ErrorCode(err) == ErrCodeServerError
}

// IsUnknownQualityGate reports whether err is an unresolvable quality gate error
func IsUnknownQualityGate(err error) bool {
	return ErrorCode(err) == ErrCodeUnknownQualityGate
}
