package serialization

import (
	"encoding/xml"
	"fmt"
	"io"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/srand/mvvm/registry"
)

const (
	// typeAttribute carries the concrete type of an interface member.
	typeAttribute = "type"

	// pointerPrefix marks a type attribute whose member held a pointer.
	pointerPrefix = "*"
)

// XMLSerializer serializes struct models to XML.
//
// Every call runs on its own ContextStack: struct and interface members
// open a child context that inherits the types already resolved by the
// enclosing ones. Interface members are written with a type attribute,
// prefixed with "*" when the member held a pointer, and resolved on the way
// back through the known types first and the type registry second.
// Interface members holding a predeclared scalar (bool, string, the sized
// and unsized ints and uints, float32, float64) carry the scalar's name.
//
// Multiple goroutines may use an XMLSerializer simultaneously.
type XMLSerializer struct {
	opts XMLOptions
}

var _ Serializer = (*XMLSerializer)(nil)

func NewXMLSerializer(opts ...XMLOption) (*XMLSerializer, error) {
	options := XMLOptions{
		Logger:   logrus.StandardLogger(),
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}
	if options.Types == nil {
		options.Types = registry.New[reflect.Type]()
	}
	return &XMLSerializer{opts: options}, nil
}

func (s *XMLSerializer) ContentType() string {
	return ContentTypeXML
}

// RegisterType makes the type of model resolvable by name when it appears
// behind an interface member.
func (s *XMLSerializer) RegisterType(model any) error {
	if isNil(model) {
		return &ArgumentError{Arg: "model"}
	}
	t := indirectType(reflect.TypeOf(model))
	name := t.Name()
	if t.Kind() != reflect.Struct || name == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	if err := s.opts.Types.Register(name, t); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	s.opts.Logger.WithField("type", t.String()).Debug("registered model type")
	return nil
}

func (s *XMLSerializer) Marshal(v any) ([]byte, error) {
	element, err := s.Encode(v)
	if err != nil {
		return nil, err
	}
	return []byte(element.Markup(s.opts.Indent)), nil
}

// Encode serializes v into an element.
func (s *XMLSerializer) Encode(v any) (element *Element, err error) {
	defer func() { s.opts.Metrics.operation("marshal", err) }()

	rv := reflect.ValueOf(v)
	if isNil(v) {
		return nil, &ArgumentError{Arg: "model"}
	}
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.Type().Name() == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
	}

	w := &modelWriter{stack: s.newStack(), maxDepth: s.opts.MaxDepth}
	return w.writeModel(rv.Type().Name(), rv, "")
}

func (s *XMLSerializer) Unmarshal(data []byte, v any) (err error) {
	defer func() { s.opts.Metrics.operation("unmarshal", err) }()

	rv, err := modelTarget(v)
	if err != nil {
		return err
	}

	ctx, err := NewContextInfoFromString(string(data), v)
	if err != nil {
		return err
	}
	return s.read(ctx, rv)
}

// Decode reads v from an element, as produced by Encode.
func (s *XMLSerializer) Decode(element *Element, v any) (err error) {
	defer func() { s.opts.Metrics.operation("unmarshal", err) }()

	rv, err := modelTarget(v)
	if err != nil {
		return err
	}
	ctx, err := NewContextInfo(element, v)
	if err != nil {
		return err
	}
	return s.read(ctx, rv)
}

func (s *XMLSerializer) read(ctx *ContextInfo, rv reflect.Value) error {
	r := &modelReader{stack: s.newStack(), types: s.opts.Types, maxDepth: s.opts.MaxDepth}
	return r.readModel(ctx, rv)
}

func (s *XMLSerializer) newStack() *ContextStack {
	return newContextStack(s.opts.Logger, s.opts.Metrics)
}

func (s *XMLSerializer) NewDecoder(reader io.Reader) Decoder {
	return &xmlDecoder{serializer: s, decoder: xml.NewDecoder(reader)}
}

func (s *XMLSerializer) NewEncoder(writer io.Writer) Encoder {
	return &xmlEncoder{serializer: s, writer: writer}
}

// xmlDecoder reads one model per top level element of a stream.
type xmlDecoder struct {
	serializer *XMLSerializer
	decoder    *xml.Decoder
}

func (d *xmlDecoder) Decode(v any) (err error) {
	defer func() { d.serializer.opts.Metrics.operation("decode", err) }()

	rv, err := modelTarget(v)
	if err != nil {
		return err
	}

	for {
		tok, err := d.decoder.Token()
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		ctx, err := NewContextInfoFromDecoder(d.decoder, start, v)
		if err != nil {
			return err
		}
		return d.serializer.read(ctx, rv)
	}
}

type xmlEncoder struct {
	serializer *XMLSerializer
	writer     io.Writer
}

func (e *xmlEncoder) Encode(v any) error {
	data, err := e.serializer.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = e.writer.Write(data)
	return err
}

// modelTarget checks that v is a non-nil pointer to a named struct and
// returns the struct.
func modelTarget(v any) (reflect.Value, error) {
	if isNil(v) {
		return reflect.Value{}, &ArgumentError{Arg: "model"}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return reflect.Value{}, &ArgumentError{Arg: "model", Reason: "not a pointer"}
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct || rv.Type().Name() == "" {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
	}
	return rv, nil
}
