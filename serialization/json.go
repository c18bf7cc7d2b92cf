package serialization

import (
	"encoding/json"
	"io"
)

// JSONSerializer serializes models with encoding/json. It does not use
// serialization contexts; JSON carries no polymorphic type information.
type JSONSerializer struct {
	indent string
}

func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// NewIndentedJSONSerializer returns a JSONSerializer that indents its output.
func NewIndentedJSONSerializer(indent string) *JSONSerializer {
	return &JSONSerializer{indent: indent}
}

func (s *JSONSerializer) ContentType() string {
	return ContentTypeJSON
}

func (s *JSONSerializer) Marshal(v any) ([]byte, error) {
	if s.indent != "" {
		return json.MarshalIndent(v, "", s.indent)
	}
	return json.Marshal(v)
}

func (s *JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (s *JSONSerializer) NewDecoder(reader io.Reader) Decoder {
	return json.NewDecoder(reader)
}

func (s *JSONSerializer) NewEncoder(writer io.Writer) Encoder {
	enc := json.NewEncoder(writer)
	if s.indent != "" {
		enc.SetIndent("", s.indent)
	}
	return enc
}
