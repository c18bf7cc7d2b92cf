package mvvm

var (
	// ErrNilModel indicates that a nil model was passed where one is required.
	ErrNilModel = &Error{"nil model"}
)

// Error represents an error in the mvvm package.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
