// Package navigation routes an application between views through a
// platform Root.
package navigation

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/srand/mvvm"
	"github.com/srand/mvvm/registry"
)

var viewModelInterface = reflect.TypeFor[mvvm.ViewModel]()

// Service navigates inside an application.
//
// Multiple goroutines may invoke methods on a Service simultaneously.
type Service struct {
	Events

	root         Root
	uris         *registry.Registry[string]
	ownsRegistry bool
	resolve      TargetResolver
	log          logrus.FieldLogger
}

func NewService(root Root, opts ...Option) (*Service, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: root is nil", ErrInvalidArgument)
	}

	options := ServiceOptions{Logger: logrus.StandardLogger()}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}

	s := &Service{
		root:    root,
		uris:    options.Registry,
		resolve: options.Resolver,
		log:     options.Logger.WithField("service", "navigation"),
	}
	if s.uris == nil {
		s.uris = registry.New[string]()
		s.ownsRegistry = true
	}
	if s.resolve == nil {
		s.resolve = ConventionResolver
	}
	for _, f := range options.ClosingHooks {
		s.OnClosing(f)
	}
	for _, f := range options.ClosedListeners {
		s.OnClosed(f)
	}
	return s, nil
}

// CloseApplication asks the closing hooks and, unless one cancels, closes
// the main window and then notifies the closed listeners.
// It reports whether the application was closed.
func (s *Service) CloseApplication(ctx context.Context) (bool, error) {
	if d := s.TriggerClosing(ctx); d.Cancel {
		s.log.WithField("reason", d.Reason).Info("closing of application is canceled")
		return false, nil
	}

	if err := s.root.CloseMainWindow(ctx); err != nil {
		return false, err
	}

	s.TriggerClosed()
	return true, nil
}

// GoBack navigates to the previous page, if there is one.
func (s *Service) GoBack(ctx context.Context) error {
	if !s.root.CanGoBack() {
		return nil
	}
	return s.root.GoBack(ctx)
}

// GoForward navigates to the next page, if there is one.
func (s *Service) GoForward(ctx context.Context) error {
	if !s.root.CanGoForward() {
		return nil
	}
	return s.root.GoForward(ctx)
}

func (s *Service) CanGoBack() bool {
	return s.root.CanGoBack()
}

func (s *Service) CanGoForward() bool {
	return s.root.CanGoForward()
}

// Navigate navigates to uri without parameters.
func (s *Service) Navigate(ctx context.Context, uri *url.URL) error {
	if uri == nil {
		return fmt.Errorf("%w: uri is nil", ErrInvalidArgument)
	}
	return s.NavigateTo(ctx, uri.String(), nil)
}

// NavigateTo navigates to uri. A nil params is treated as empty.
func (s *Service) NavigateTo(ctx context.Context, uri string, params map[string]any) error {
	if strings.TrimSpace(uri) == "" {
		return fmt.Errorf("%w: uri is empty", ErrInvalidArgument)
	}
	if params == nil {
		params = make(map[string]any)
	}
	return s.root.Navigate(ctx, uri, params)
}

// NavigateToViewModel navigates to the view registered for viewModelType,
// resolving and registering it on first use.
func (s *Service) NavigateToViewModel(ctx context.Context, viewModelType reflect.Type, params map[string]any) error {
	if viewModelType == nil {
		return fmt.Errorf("%w: view model type is nil", ErrInvalidArgument)
	}

	uri, err := s.uris.GetOrAdd(TypeName(viewModelType), func() (string, error) {
		return s.resolve(viewModelType)
	})
	if err != nil {
		return err
	}
	return s.NavigateTo(ctx, uri, params)
}

// Register maps name to uri. Registering a name twice fails with an error
// matching registry.ErrInvalidOperation.
func (s *Service) Register(name string, uri *url.URL) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidArgument)
	}
	if uri == nil {
		return fmt.Errorf("%w: uri is nil", ErrInvalidArgument)
	}

	if err := s.uris.Register(name, uri.String()); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"name": name, "uri": uri.String()}).Debug("registered view model")
	return nil
}

// RegisterViewModel maps a view model type to uri, overriding the resolver.
func (s *Service) RegisterViewModel(viewModelType reflect.Type, uri *url.URL) error {
	if viewModelType == nil {
		return fmt.Errorf("%w: view model type is nil", ErrInvalidArgument)
	}
	if !implementsViewModel(viewModelType) {
		return fmt.Errorf("%w: %s", ErrNotViewModel, viewModelType)
	}
	return s.Register(TypeName(viewModelType), uri)
}

// Unregister removes name and reports whether it was registered.
func (s *Service) Unregister(name string) bool {
	ok := s.uris.Unregister(name)
	if ok {
		s.log.WithField("name", name).Debug("unregistered view model")
	}
	return ok
}

func (s *Service) UnregisterViewModel(viewModelType reflect.Type) bool {
	if viewModelType == nil {
		return false
	}
	return s.Unregister(TypeName(viewModelType))
}

// Lookup returns the uri registered under name.
func (s *Service) Lookup(name string) (string, bool) {
	return s.uris.Lookup(name)
}

// Close tears down the registry if the service created it.
func (s *Service) Close() error {
	if !s.ownsRegistry {
		return nil
	}
	return s.uris.Close()
}

// TypeName is the registration name of a view model type: its package
// path and name, pointers removed.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func implementsViewModel(t reflect.Type) bool {
	if t.Implements(viewModelInterface) {
		return true
	}
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(viewModelInterface)
}
