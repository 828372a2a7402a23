package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns service values into the bytes held by a backend.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type msgpackCodec struct{}

// NewMsgpackCodec returns the default codec used by both backends.
func NewMsgpackCodec() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// Encode is a type-safe wrapper around Codec.Marshal.
func Encode[T any](c Codec, v T) ([]byte, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cache: encode %T: %w", v, err)
	}
	return data, nil
}

// Decode is a type-safe wrapper around Codec.Unmarshal. Any decode failure is
// reported as ErrInvalidResultType so callers can treat it as a miss.
func Decode[T any](c Codec, data []byte) (T, error) {
	var out T
	if err := c.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decode %T: %v", ErrInvalidResultType, zero, err)
	}
	return out, nil
}
