package weaver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the kind of submission failure
type ErrorType string

const (
	// ErrTypeValidation indicates a locally rejected submission
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeServer indicates a non-2xx response from the service
	ErrTypeServer ErrorType = "server"

	// ErrTypeProcessing indicates a 2xx response that reported failure
	ErrTypeProcessing ErrorType = "processing"

	// ErrTypeTransport indicates the request did not complete or the reply was unreadable
	ErrTypeTransport ErrorType = "transport"

	// ErrTypeConfiguration indicates invalid client configuration
	ErrTypeConfiguration ErrorType = "configuration"
)

// Fixed user-facing messages.
const (
	MessageNoFile          = "Please select an audio file."
	MessageServerFallback  = "Failed to process audio"
	MessageProcessing      = "Processing failed"
	DisplayPrefix          = "Failed to process audio: "
	messageUploadTooLarge  = "Audio file exceeds the %s upload limit."
	messageRequestBuild    = "failed to build upload request"
	messageInvalidResponse = "invalid response from service"
)

// Error is a classified submission failure
type Error struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message is the text shown to the user, before the display prefix
	Message string `json:"message"`

	// StatusCode for HTTP-related errors
	StatusCode int `json:"status_code,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("type=%s", e.Type)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same type
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Type == te.Type
	}
	return false
}

// DisplayMessage returns the message as the user sees it.
// Validation failures are shown verbatim; everything else carries the prefix.
func (e *Error) DisplayMessage() string {
	if e.Type == ErrTypeValidation {
		return e.Message
	}
	return DisplayPrefix + e.Message
}

// ConfigurationError represents invalid client configuration
type ConfigurationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for field '%s': %s", e.Field, e.Message)
}

// NewError creates a classified error
func NewError(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// NewErrorWithCause creates a classified error with an underlying cause
func NewErrorWithCause(errType ErrorType, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// NewValidationError creates a local validation failure
func NewValidationError(message string) *Error {
	return NewError(ErrTypeValidation, message)
}

// NewUploadTooLargeError reports a file above the upload limit
func NewUploadTooLargeError(limit int64) *Error {
	size := fmt.Sprintf("%d bytes", limit)
	if limit >= 1<<20 && limit%(1<<20) == 0 {
		size = fmt.Sprintf("%d MiB", limit>>20)
	}
	return NewValidationError(fmt.Sprintf(messageUploadTooLarge, size))
}

// NewServerError creates an error for a non-2xx response
func NewServerError(statusCode int, message string) *Error {
	if message == "" {
		message = MessageServerFallback
	}
	return &Error{Type: ErrTypeServer, Message: message, StatusCode: statusCode}
}

// NewProcessingError creates an error for a reply that reported failure
func NewProcessingError(cause error) *Error {
	return NewErrorWithCause(ErrTypeProcessing, MessageProcessing, cause)
}

// NewTransportError wraps a failure to complete the exchange.
// The message is the underlying error text.
func NewTransportError(cause error) *Error {
	message := messageInvalidResponse
	if cause != nil {
		message = cause.Error()
	}
	return NewErrorWithCause(ErrTypeTransport, message, cause)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

func hasType(err error, errType ErrorType) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Type == errType
	}
	return false
}

// IsValidationError checks if an error is a local validation failure
func IsValidationError(err error) bool {
	return hasType(err, ErrTypeValidation)
}

// IsServerError checks if an error came from a non-2xx response
func IsServerError(err error) bool {
	return hasType(err, ErrTypeServer)
}

// IsProcessingError checks if the service reported a processing failure
func IsProcessingError(err error) bool {
	return hasType(err, ErrTypeProcessing)
}

// IsTransportError checks if the exchange itself failed
func IsTransportError(err error) bool {
	return hasType(err, ErrTypeTransport)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	if hasType(err, ErrTypeConfiguration) {
		return true
	}
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
