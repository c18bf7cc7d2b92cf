package serialization

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/srand/mvvm/registry"
)

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

type modelField struct {
	index int
	name  string
	attr  bool
}

// modelFields lists the serialized fields of a struct type. Fields follow
// the encoding/xml tag conventions for a name, ",attr" and "-".
func modelFields(t reflect.Type) []modelField {
	var fields []modelField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		attr := false
		if tag, ok := f.Tag.Lookup("xml"); ok {
			if tag == "-" {
				continue
			}
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "attr" {
					attr = true
				}
			}
		}
		fields = append(fields, modelField{index: i, name: name, attr: attr})
	}
	return fields
}

type modelWriter struct {
	stack    *ContextStack
	maxDepth int
}

// writeModel writes the struct v as element name inside a new context.
// While the members are written the context holds a placeholder element
// with only the name and type attribute; the finished element replaces it
// before the context is popped.
func (w *modelWriter) writeModel(name string, v reflect.Value, concrete string) (*Element, error) {
	var attrs []Attr
	if concrete != "" {
		attrs = append(attrs, Attr{Name: typeAttribute, Value: concrete})
	}

	ctx, err := NewContextInfo(NewElement(name, attrs, ""), modelOf(v))
	if err != nil {
		return nil, err
	}
	if _, err := w.stack.Push(ctx); err != nil {
		return nil, err
	}
	defer w.stack.Pop()

	if w.stack.Depth() > w.maxDepth {
		return nil, ErrMaxDepth
	}
	if err := ctx.Activate(); err != nil {
		return nil, err
	}

	var children []*Element
	for _, f := range modelFields(v.Type()) {
		fv := v.Field(f.index)
		if f.attr {
			text, ok, err := formatScalar(fv)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, f.name, err)
			}
			if ok {
				attrs = append(attrs, Attr{Name: f.name, Value: text})
			}
			continue
		}

		elems, err := w.writeMember(ctx, f.name, fv)
		if err != nil {
			return nil, err
		}
		children = append(children, elems...)
	}

	element := NewElement(name, attrs, "", children...)
	ctx.element = element
	return element, nil
}

func (w *modelWriter) writeMember(ctx *ContextInfo, name string, v reflect.Value) ([]*Element, error) {
	if isTextMarshaler(v) {
		text, _, err := formatScalar(v)
		if err != nil {
			return nil, err
		}
		return []*Element{NewElement(name, nil, text)}, nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		concrete := v.Elem()
		pointer := concrete.Kind() == reflect.Pointer
		if pointer {
			if concrete.IsNil() {
				return nil, nil
			}
			concrete = concrete.Elem()
		}
		if concrete.Kind() != reflect.Struct {
			return writeScalarMember(name, v.Elem(), concrete, pointer)
		}
		t := concrete.Type()
		if t.Name() == "" {
			return nil, fmt.Errorf("%w: anonymous struct in %s", ErrUnsupportedType, name)
		}
		ctx.AddKnownType(t)
		typ := t.Name()
		if pointer {
			typ = pointerPrefix + typ
		}
		elem, err := w.writeModel(name, concrete, typ)
		if err != nil {
			return nil, err
		}
		return []*Element{elem}, nil

	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return w.writeMember(ctx, name, v.Elem())

	case reflect.Struct:
		elem, err := w.writeModel(name, v, "")
		if err != nil {
			return nil, err
		}
		return []*Element{elem}, nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		var out []*Element
		for i := 0; i < v.Len(); i++ {
			elems, err := w.writeMember(ctx, name, v.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
		}
		return out, nil
	}

	text, ok, err := formatScalar(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		return nil, nil
	}
	return []*Element{NewElement(name, nil, text)}, nil
}

// scalarTypes are the types an interface member may hold without being a
// struct. They are named by their predeclared identifier.
var scalarTypes = func() map[string]reflect.Type {
	types := make(map[string]reflect.Type)
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[string](),
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		types[t.Name()] = t
	}
	return types
}()

// writeScalarMember writes an interface member holding a non-struct value.
// Only predeclared scalars held by value survive a round trip.
func writeScalarMember(name string, held, concrete reflect.Value, pointer bool) ([]*Element, error) {
	t := concrete.Type()
	if pointer || scalarTypes[t.Name()] != t {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnsupportedType, held.Type(), name)
	}
	text, _, err := formatScalar(concrete)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return []*Element{NewElement(name, []Attr{{Name: typeAttribute, Value: t.Name()}}, text)}, nil
}

type modelReader struct {
	stack    *ContextStack
	types    *registry.Registry[reflect.Type]
	maxDepth int
}

// readModel fills the struct v from the element of ctx.
func (r *modelReader) readModel(ctx *ContextInfo, v reflect.Value) error {
	if _, err := r.stack.Push(ctx); err != nil {
		return err
	}
	defer r.stack.Pop()

	if r.stack.Depth() > r.maxDepth {
		return ErrMaxDepth
	}
	if err := ctx.Activate(); err != nil {
		return err
	}

	element := ctx.Element()
	for _, f := range modelFields(v.Type()) {
		fv := v.Field(f.index)
		if f.attr {
			if text, ok := element.Attr(f.name); ok {
				if err := parseScalar(fv, text); err != nil {
					return fmt.Errorf("%s.%s: %w", element.Name(), f.name, err)
				}
			}
			continue
		}

		children := element.ChildrenNamed(f.name)
		if len(children) == 0 {
			continue
		}

		if isRepeated(fv.Type()) {
			slice := reflect.MakeSlice(fv.Type(), 0, len(children))
			for _, child := range children {
				item := reflect.New(fv.Type().Elem()).Elem()
				if err := r.readMember(ctx, child, item); err != nil {
					return err
				}
				slice = reflect.Append(slice, item)
			}
			fv.Set(slice)
			continue
		}

		if err := r.readMember(ctx, children[0], fv); err != nil {
			return err
		}
	}
	return nil
}

func (r *modelReader) readMember(ctx *ContextInfo, element *Element, v reflect.Value) error {
	if isTextUnmarshaler(v) {
		return parseScalar(v, element.Text())
	}

	switch v.Kind() {
	case reflect.Interface:
		name, ok := element.Attr(typeAttribute)
		if !ok {
			if v.NumMethod() == 0 {
				v.Set(reflect.ValueOf(element.Text()))
				return nil
			}
			return fmt.Errorf("%s: missing %s attribute", element.Name(), typeAttribute)
		}

		if t, ok := scalarTypes[name]; ok {
			scalar := reflect.New(t).Elem()
			if err := parseScalar(scalar, element.Text()); err != nil {
				return fmt.Errorf("%s: %w", element.Name(), err)
			}
			if !t.AssignableTo(v.Type()) {
				return fmt.Errorf("%w: %s does not implement %s", ErrUnsupportedType, t, v.Type())
			}
			v.Set(scalar)
			return nil
		}

		name, pointer := strings.CutPrefix(name, pointerPrefix)
		t, err := r.resolve(ctx, name)
		if err != nil {
			return err
		}
		model := reflect.New(t)
		child, err := NewContextInfo(element, model.Interface())
		if err != nil {
			return err
		}
		if err := r.readModel(child, model.Elem()); err != nil {
			return err
		}

		// Without the pointer marker the value is preferred, so value
		// receivers come back as values.
		switch {
		case pointer && model.Type().AssignableTo(v.Type()):
			v.Set(model)
		case !pointer && t.AssignableTo(v.Type()):
			v.Set(model.Elem())
		case !pointer && model.Type().AssignableTo(v.Type()):
			v.Set(model)
		default:
			return fmt.Errorf("%w: %s does not implement %s", ErrUnsupportedType, model.Type(), v.Type())
		}
		return nil

	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return r.readMember(ctx, element, v.Elem())

	case reflect.Struct:
		child, err := NewContextInfo(element, v.Addr().Interface())
		if err != nil {
			return err
		}
		return r.readModel(child, v)
	}

	return parseScalar(v, element.Text())
}

// resolve finds the type named by a type attribute. Types already known to
// ctx are used as is; others come from the registry and become known to
// ctx and the contexts attached below it.
func (r *modelReader) resolve(ctx *ContextInfo, name string) (reflect.Type, error) {
	if t, ok := ctx.LookupKnownType(name); ok {
		return t, nil
	}
	t, ok := r.types.Lookup(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	ctx.AddKnownType(t)
	return t, nil
}

func modelOf(v reflect.Value) any {
	if v.CanAddr() {
		return v.Addr().Interface()
	}
	return v.Interface()
}

func isRepeated(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8
}

func isTextMarshaler(v reflect.Value) bool {
	if v.Kind() == reflect.Interface || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return false
	}
	if v.Type().Implements(textMarshalerType) {
		return true
	}
	return v.CanAddr() && reflect.PointerTo(v.Type()).Implements(textMarshalerType)
}

func isTextUnmarshaler(v reflect.Value) bool {
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		return false
	}
	return v.CanAddr() && reflect.PointerTo(v.Type()).Implements(textUnmarshalerType)
}

// formatScalar renders a scalar value. ok is false for nil pointers and
// empty interfaces, which are omitted.
func formatScalar(v reflect.Value) (text string, ok bool, err error) {
	if isTextMarshaler(v) {
		m, isM := v.Interface().(encoding.TextMarshaler)
		if !isM {
			m = v.Addr().Interface().(encoding.TextMarshaler)
		}
		b, err := m.MarshalText()
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "", false, nil
		}
		return formatScalar(v.Elem())
	case reflect.String:
		return v.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), true, nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes()), true, nil
		}
	}
	return "", false, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
}

func parseScalar(v reflect.Value, text string) error {
	if isTextUnmarshaler(v) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return parseScalar(v.Elem(), text)
	case reflect.String:
		v.SetString(text)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(strings.TrimSpace(text), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
		}
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return err
		}
		v.SetBytes(b)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
	return nil
}
