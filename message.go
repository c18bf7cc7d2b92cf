package mvvm

import (
	"github.com/srand/mvvm/serialization"
)

// Marshal serializes model with serializer.
func Marshal[T any](serializer serialization.Serializer, model *T) ([]byte, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	return serializer.Marshal(model)
}

// Unmarshal deserializes data into a new T.
func Unmarshal[T any](serializer serialization.Serializer, data []byte) (*T, error) {
	var result T
	if err := serializer.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Clone returns a deep copy of model made by a serialization round trip.
func Clone[T any](serializer serialization.Serializer, model *T) (*T, error) {
	data, err := Marshal(serializer, model)
	if err != nil {
		return nil, err
	}
	return Unmarshal[T](serializer, data)
}
