package navigation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/srand/mvvm/registry"
)

// TargetResolver maps a view model type to the uri of its view.
type TargetResolver func(viewModelType reflect.Type) (string, error)

type ServiceOptions struct {
	Logger logrus.FieldLogger

	// Registry holds the name to uri registrations. When it is injected the
	// caller owns it and Service.Close leaves it open.
	Registry *registry.Registry[string]

	Resolver TargetResolver

	ClosingHooks    []ClosingHook
	ClosedListeners []ClosedListener
}

type Option func(*ServiceOptions) error

func WithLogger(log logrus.FieldLogger) Option {
	return func(opts *ServiceOptions) error {
		if log == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		opts.Logger = log
		return nil
	}
}

func WithRegistry(r *registry.Registry[string]) Option {
	return func(opts *ServiceOptions) error {
		if r == nil {
			return fmt.Errorf("registry cannot be nil")
		}
		opts.Registry = r
		return nil
	}
}

func WithTargetResolver(f TargetResolver) Option {
	return func(opts *ServiceOptions) error {
		if f == nil {
			return fmt.Errorf("target resolver cannot be nil")
		}
		if opts.Resolver != nil {
			return fmt.Errorf("target resolver is already set")
		}
		opts.Resolver = f
		return nil
	}
}

func WithClosingHook(f ClosingHook) Option {
	return func(opts *ServiceOptions) error {
		if f == nil {
			return fmt.Errorf("closing hook cannot be nil")
		}
		opts.ClosingHooks = append(opts.ClosingHooks, f)
		return nil
	}
}

func WithClosedListener(f ClosedListener) Option {
	return func(opts *ServiceOptions) error {
		if f == nil {
			return fmt.Errorf("closed listener cannot be nil")
		}
		opts.ClosedListeners = append(opts.ClosedListeners, f)
		return nil
	}
}

// ConventionResolver maps FooViewModel to /views/Foo.
func ConventionResolver(viewModelType reflect.Type) (string, error) {
	for viewModelType.Kind() == reflect.Pointer {
		viewModelType = viewModelType.Elem()
	}
	name := strings.TrimSuffix(viewModelType.Name(), "ViewModel")
	if name == "" {
		return "", fmt.Errorf("%w: no view for %s", ErrInvalidArgument, viewModelType)
	}
	return "/views/" + name, nil
}
