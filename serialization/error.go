package serialization

import "fmt"

var (
	ErrInvalidMessage = &SerializationError{Msg: "invalid message"}
	// ErrInvalidArgument is matched by every *ArgumentError.
	ErrInvalidArgument = &SerializationError{Msg: "invalid argument"}
	// ErrInvalidOperation reports a call that the current state does not allow.
	ErrInvalidOperation = &SerializationError{Msg: "invalid operation"}
	ErrUnsupportedType  = &SerializationError{Msg: "unsupported type"}
	ErrMaxDepth         = &SerializationError{Msg: "maximum nesting depth exceeded"}
)

type SerializationError struct {
	Msg string
}

func (e *SerializationError) Error() string {
	return e.Msg
}

// ArgumentError reports a missing or unusable constructor argument.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("argument %q is nil", e.Arg)
	}
	return fmt.Sprintf("argument %q: %s", e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// StateError reports a context lifecycle transition that is not allowed.
type StateError struct {
	From State
	To   State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("context cannot move from %s to %s", e.From, e.To)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidOperation
}

// UnknownTypeError is returned when a polymorphic member names a type that
// is neither known to the current context nor registered.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

// InvariantViolation is raised with panic when the context stack is built
// incorrectly. It is never returned as an error.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Msg
}
