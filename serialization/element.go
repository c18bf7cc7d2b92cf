package serialization

import (
	"encoding/xml"
	"strings"
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is the canonical, read-only form of an XML fragment.
//
// Names are local names; namespace declarations are not retained.
// An Element never changes after construction and may be shared freely.
type Element struct {
	name     string
	attrs    []Attr
	children []*Element
	text     string
}

// NewElement creates an element. The attribute and children slices are copied.
func NewElement(name string, attrs []Attr, text string, children ...*Element) *Element {
	e := &Element{name: name, text: text}
	if len(attrs) > 0 {
		e.attrs = append([]Attr(nil), attrs...)
	}
	for _, child := range children {
		if child != nil {
			e.children = append(e.children, child)
		}
	}
	return e
}

func (e *Element) Name() string {
	return e.name
}

// Text returns the character data directly under the element.
func (e *Element) Text() string {
	return e.text
}

func (e *Element) Attrs() []Attr {
	return append([]Attr(nil), e.attrs...)
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// Child returns the first child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the children with the given name in document order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// Equal reports whether two elements have the same name, attributes in the
// same order, text and equal children.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.name != other.name || e.text != other.text {
		return false
	}
	if len(e.attrs) != len(other.attrs) || len(e.children) != len(other.children) {
		return false
	}
	for i := range e.attrs {
		if e.attrs[i] != other.attrs[i] {
			return false
		}
	}
	for i := range e.children {
		if !e.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return true
}

// String returns the element as compact markup.
func (e *Element) String() string {
	return e.Markup("")
}

// Markup returns the element as markup, placing each child element on its
// own line indented by indent. An empty indent produces compact output.
func (e *Element) Markup(indent string) string {
	var b strings.Builder
	e.write(&b, indent, 0)
	return b.String()
}

func (e *Element) write(b *strings.Builder, indent string, depth int) {
	if indent != "" && depth > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indent, depth))
	}

	b.WriteByte('<')
	b.WriteString(e.name)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		escape(b, a.Value)
		b.WriteByte('"')
	}

	if e.text == "" && len(e.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')

	escape(b, e.text)
	for _, c := range e.children {
		c.write(b, indent, depth+1)
	}
	if indent != "" && len(e.children) > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indent, depth))
	}

	b.WriteString("</")
	b.WriteString(e.name)
	b.WriteByte('>')
}

func escape(b *strings.Builder, s string) {
	// strings.Builder never fails a write
	_ = xml.EscapeText(b, []byte(s))
}
