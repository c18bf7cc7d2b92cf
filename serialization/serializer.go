package serialization

import "io"

const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/protobuf"
	ContentTypeXML      = "application/xml"
)

type Decoder interface {
	Decode(v any) error
}

type Encoder interface {
	Encode(v any) error
}

// Serializer converts models to and from their wire form.
//
// Implementations must be safe for concurrent use.
type Serializer interface {
	// ContentType returns the media type produced by Marshal.
	ContentType() string

	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error

	NewDecoder(reader io.Reader) Decoder
	NewEncoder(writer io.Writer) Encoder
}
