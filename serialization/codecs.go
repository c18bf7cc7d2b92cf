package serialization

import "github.com/srand/mvvm/registry"

// NewCodecs returns a registry of serializers keyed by content type,
// holding the JSON, protobuf and XML serializers. The XML serializer is
// built with opts.
func NewCodecs(opts ...XMLOption) (*registry.Registry[Serializer], error) {
	xmlSerializer, err := NewXMLSerializer(opts...)
	if err != nil {
		return nil, err
	}

	codecs := registry.New[Serializer]()
	for _, s := range []Serializer{NewJSONSerializer(), NewProtoSerializer(), xmlSerializer} {
		if err := codecs.Register(s.ContentType(), s); err != nil {
			return nil, err
		}
	}
	return codecs, nil
}
