package serialization

import (
	"bufio"
	"io"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/proto"
)

type protoSerializer struct{}

// NewProtoSerializer returns a Serializer for proto.Message models.
// Streams are length delimited.
func NewProtoSerializer() Serializer {
	return &protoSerializer{}
}

func (s *protoSerializer) ContentType() string {
	return ContentTypeProtobuf
}

func (s *protoSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, ErrInvalidMessage
	}
	return proto.Marshal(msg)
}

func (s *protoSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return ErrInvalidMessage
	}
	return proto.Unmarshal(data, msg)
}

func (s *protoSerializer) NewDecoder(reader io.Reader) Decoder {
	br, ok := reader.(protodelim.Reader)
	if !ok {
		br = bufio.NewReader(reader)
	}
	return &protoDecoder{reader: br}
}

func (s *protoSerializer) NewEncoder(writer io.Writer) Encoder {
	return &protoEncoder{writer: writer}
}

type protoDecoder struct {
	reader protodelim.Reader
}

func (d *protoDecoder) Decode(v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return ErrInvalidMessage
	}
	return protodelim.UnmarshalFrom(d.reader, msg)
}

type protoEncoder struct {
	writer io.Writer
}

func (e *protoEncoder) Encode(v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return ErrInvalidMessage
	}
	_, err := protodelim.MarshalTo(e.writer, msg)
	return err
}
