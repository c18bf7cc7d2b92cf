package registry

import "fmt"

var (
	// ErrInvalidArgument indicates that a required argument was missing.
	ErrInvalidArgument = &Error{"invalid argument"}
	// ErrInvalidOperation indicates that the registry state does not allow the call.
	ErrInvalidOperation = &Error{"invalid operation"}
	// ErrClosed indicates that the registry has been torn down.
	ErrClosed = &Error{"registry closed"}
)

// Error represents an error in the registry package.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AlreadyRegisteredError is returned when a name is registered twice.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("%q is already registered", e.Name)
}

func (e *AlreadyRegisteredError) Unwrap() error {
	return ErrInvalidOperation
}
