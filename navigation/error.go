package navigation

var (
	ErrInvalidArgument = &Error{"invalid argument"}
	// ErrNotViewModel indicates a type registered as a view model that does
	// not implement mvvm.ViewModel.
	ErrNotViewModel = &Error{"type does not implement mvvm.ViewModel"}
	ErrNoHistory    = &Error{"no history in that direction"}
	ErrClosed       = &Error{"main window closed"}
)

// Error represents an error in the navigation package.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
