package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Services report argument errors before touching storage;
// gateways report storage errors after rolling back.
var (
	// ErrInvalidArgument marks validation failures and references to
	// natural keys that do not exist where existence is required.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage marks failures of the underlying transactional operation.
	ErrStorage = errors.New("storage failure")

	// ErrNotFound marks gateway operations addressed at an identifier that
	// does not resolve to a stored record.
	ErrNotFound = fmt.Errorf("%w: record not found", ErrStorage)

	// ErrIntegrity marks a violated uniqueness invariant: a natural-key
	// lookup returned more than one record. It is a storage error; it means
	// the saving path let a duplicate through.
	ErrIntegrity = fmt.Errorf("%w: data integrity violation", ErrStorage)
)

// Entity lookup errors raised by the services.
var (
	ErrStudentNotFound = fmt.Errorf("%w: student does not exist", ErrInvalidArgument)
	ErrCourseNotFound  = fmt.Errorf("%w: course does not exist", ErrInvalidArgument)
)

// CustomError carries a context message on top of one of the error kinds.
type CustomError struct {
	Err     error
	Message string
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes the underlying error kind to errors.Is.
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewArgumentError creates an ErrInvalidArgument with a message.
func NewArgumentError(message string) error {
	return &CustomError{Err: ErrInvalidArgument, Message: message}
}

// NewStorageError creates an ErrStorage with a message.
func NewStorageError(message string) error {
	return &CustomError{Err: ErrStorage, Message: message}
}

// NewIntegrityError creates an ErrIntegrity with a message.
func NewIntegrityError(message string) error {
	return &CustomError{Err: ErrIntegrity, Message: message}
}

// StorageFailure wraps a backend error as an ErrStorage, keeping the cause
// text in the message.
func StorageFailure(op string, cause error) error {
	return &CustomError{Err: ErrStorage, Message: fmt.Sprintf("%s: %v", op, cause)}
}
