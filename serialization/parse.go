package serialization

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ParseElement parses markup into an Element.
// Syntax errors from encoding/xml are returned unwrapped.
func ParseElement(content string) (*Element, error) {
	return ReadElement(strings.NewReader(content))
}

// ReadElement parses the single root element available from r.
func ReadElement(r io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(r)

	var stack []*Element
	var root *Element
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("unexpected element %s after document end", t.Name.Local)
			}
			elem := &Element{name: t.Name.Local, attrs: convertAttrs(t.Attr)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, elem)
			} else {
				root = elem
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			closing := stack[len(stack)-1]
			if len(closing.children) > 0 && isBlank(closing.text) {
				closing.text = ""
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isBlank(string(t)) {
					return nil, errors.New("unexpected character data outside root element")
				}
				continue
			}
			stack[len(stack)-1].text += string(t)
		}
	}

	if root == nil || !rootClosed {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

func convertAttrs(attrs []xml.Attr) []Attr {
	var out []Attr
	for _, a := range attrs {
		if isNamespaceDecl(a.Name) {
			continue
		}
		out = append(out, Attr{Name: a.Name.Local, Value: a.Value})
	}
	return out
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

func isBlank(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
