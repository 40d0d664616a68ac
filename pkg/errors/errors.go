package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidImage indicates that a file is not a decodable image
	ErrInvalidImage = errors.New("invalid image")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCancelled indicates that an operation was cancelled
	ErrCancelled = errors.New("operation cancelled")

	// ErrUnauthorized indicates that the request lacks valid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrExternalService indicates an error with an external service
	ErrExternalService = errors.New("external service error")

	// ErrModelUnavailable indicates the inference backend or a model is unreachable
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrDatabaseOperation indicates a database operation failure
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrDownloadFailed indicates that a download operation failed
	ErrDownloadFailed = errors.New("download failed")
)

// ServiceError represents a service-level error with additional context
type ServiceError struct {
	Op      string // Operation that failed
	Service string // Service where the error occurred
	Err     error  // Underlying error
	Context map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if len(e.Context) > 0 {
		return fmt.Sprintf("%s.%s: %v (context: %v)", e.Service, e.Op, e.Err, e.Context)
	}
	return fmt.Sprintf("%s.%s: %v", e.Service, e.Op, e.Err)
}

// Unwrap allows errors.Is and errors.As to work
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

// WithContext adds context to a ServiceError
func (e *ServiceError) WithContext(key string, value interface{}) *ServiceError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if an error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidImage)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrModelUnavailable) ||
		errors.Is(err, ErrDownloadFailed)
}
