package serialization

import (
	"encoding/xml"
	"io"
	"reflect"
	"strings"

	"golang.org/x/net/html"
)

// NewContextInfo creates a context for an already parsed element.
// model may be nil for value placeholders; element may not.
func NewContextInfo(element *Element, model any) (*ContextInfo, error) {
	if element == nil {
		return nil, &ArgumentError{Arg: "element"}
	}
	return newContextInfo(element, model), nil
}

// NewContextInfoFromString parses content and creates a context for model.
// Parse failures are returned as produced by encoding/xml.
func NewContextInfoFromString(content string, model any) (*ContextInfo, error) {
	if content == "" {
		return nil, &ArgumentError{Arg: "content"}
	}
	if isNil(model) {
		return nil, &ArgumentError{Arg: "model"}
	}

	element, err := ParseElement(content)
	if err != nil {
		return nil, err
	}
	return newContextInfo(element, model), nil
}

// NewContextInfoFromReader reads a single element from r and creates a
// context for model.
func NewContextInfoFromReader(r io.Reader, model any) (*ContextInfo, error) {
	if r == nil {
		return nil, &ArgumentError{Arg: "reader"}
	}
	if isNil(model) {
		return nil, &ArgumentError{Arg: "model"}
	}

	element, err := ReadElement(r)
	if err != nil {
		return nil, err
	}
	return newContextInfo(element, model), nil
}

// NewContextInfoFromDecoder creates a context from a decoder that has just
// returned start. It consumes the decoder up to and including the matching
// end element.
//
// The element is rebuilt under the name of the model's type with the
// attributes of start. Inner content that arrives entity encoded, such as
// "&lt;Item/&gt;", is decoded back into markup.
func NewContextInfoFromDecoder(dec *xml.Decoder, start xml.StartElement, model any) (*ContextInfo, error) {
	if dec == nil {
		return nil, &ArgumentError{Arg: "reader"}
	}
	if isNil(model) {
		return nil, &ArgumentError{Arg: "model"}
	}

	name := typeName(reflect.TypeOf(model))
	if name == "" {
		return nil, &ArgumentError{Arg: "model", Reason: "type has no name"}
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range start.Attr {
		if isNamespaceDecl(a.Name) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(a.Name.Local)
		b.WriteString(`="`)
		escape(&b, a.Value)
		b.WriteByte('"')
	}
	b.WriteByte('>')

	inner, err := readInnerXML(dec)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(inner, "&lt;") {
		inner = html.UnescapeString(inner)
	}
	b.WriteString(inner)

	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')

	element, err := ParseElement(b.String())
	if err != nil {
		return nil, err
	}
	return newContextInfo(element, model), nil
}

// readInnerXML re-encodes every token up to the end element that closes the
// current element.
func readInnerXML(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	enc := xml.NewEncoder(&b)

	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}

		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				if err := enc.Flush(); err != nil {
					return "", err
				}
				return b.String(), nil
			}
			depth--
		case xml.ProcInst:
			continue
		}

		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", err
		}
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
