// Package mvvm holds the types shared by the serialization and navigation
// services.
package mvvm

// ViewModel is implemented by view models that can be registered with the
// navigation service.
type ViewModel interface {
	// Title is the caption shown by the navigation root for the view.
	Title() string
}
