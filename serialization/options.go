package serialization

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/srand/mvvm/registry"
)

const DefaultMaxDepth = 64

type XMLOptions struct {
	// Logger receives debug entries for every attached context.
	Logger logrus.FieldLogger

	// Metrics is optional.
	Metrics *Metrics

	// Types resolves polymorphic members by type name. It may be shared
	// between serializers.
	Types *registry.Registry[reflect.Type]

	// MaxDepth bounds the nesting of contexts, which stops cyclic graphs.
	MaxDepth int

	// Indent is used by Marshal and the encoder. Empty means compact output.
	Indent string
}

type XMLOption func(*XMLOptions) error

func WithLogger(log logrus.FieldLogger) XMLOption {
	return func(opts *XMLOptions) error {
		if log == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		opts.Logger = log
		return nil
	}
}

func WithMetrics(m *Metrics) XMLOption {
	return func(opts *XMLOptions) error {
		opts.Metrics = m
		return nil
	}
}

func WithTypeRegistry(types *registry.Registry[reflect.Type]) XMLOption {
	return func(opts *XMLOptions) error {
		if types == nil {
			return fmt.Errorf("type registry cannot be nil")
		}
		opts.Types = types
		return nil
	}
}

func WithMaxDepth(depth int) XMLOption {
	return func(opts *XMLOptions) error {
		if depth <= 0 {
			return fmt.Errorf("max depth must be positive, got %d", depth)
		}
		opts.MaxDepth = depth
		return nil
	}
}

func WithIndent(indent string) XMLOption {
	return func(opts *XMLOptions) error {
		opts.Indent = indent
		return nil
	}
}
