package cache

import (
	"errors"
	"testing"
	"time"
)

type sample struct {
	ID    int64      `msgpack:"id"`
	Name  string     `msgpack:"name"`
	Tags  []string   `msgpack:"tags"`
	Ended *time.Time `msgpack:"ended"`
}

func TestMsgpackCodec_DecodeReturnsIndependentCopies(t *testing.T) {
	codec := NewMsgpackCodec()

	data, err := Encode(codec, sample{ID: 1, Name: "a", Tags: []string{"x"}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	first, err := Decode[sample](codec, data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	first.Tags[0] = "mutated"

	second, err := Decode[sample](codec, data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if second.Tags[0] != "x" {
		t.Errorf("Decode() Tags[0] = %v, want x", second.Tags[0])
	}
	if second.Ended != nil {
		t.Errorf("Decode() Ended = %v, want nil", second.Ended)
	}
}

func TestMsgpackCodec_PreservesInstant(t *testing.T) {
	codec := NewMsgpackCodec()
	ended := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)

	data, err := Encode(codec, sample{ID: 2, Ended: &ended})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode[sample](codec, data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Ended == nil || !got.Ended.Equal(ended) {
		t.Errorf("Decode() Ended = %v, want %v", got.Ended, ended)
	}
}

func TestDecode_GarbageIsInvalidResultType(t *testing.T) {
	_, err := Decode[sample](NewMsgpackCodec(), []byte{0xc1})
	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("Decode() error = %v, want ErrInvalidResultType", err)
	}
}
