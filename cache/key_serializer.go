package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

const (
	// KeySeparator sits between the region name and its arguments.
	KeySeparator = "::"
	// ArgSeparator joins the arguments of a key in declared order.
	ArgSeparator = ","
)

// defaultKeySerializer implements KeySerializer using reflection-based serialization.
// Keys look like "task-by-id::42" or "tasks-by-owner::7,10,0".
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds region + "::" + args joined by ",".
// Argument order is preserved, so callers must pass arguments in the same
// order on the read path and on the invalidation path.
func (s *defaultKeySerializer) SerializeKey(region string, args ...any) string {
	if len(args) == 0 {
		return region
	}

	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = s.serializeValue(arg)
	}

	return region + KeySeparator + strings.Join(parts, ArgSeparator)
}

// RegionOf returns the region part of a key built by SerializeKey.
func RegionOf(key string) string {
	if i := strings.Index(key, KeySeparator); i >= 0 {
		return key[:i]
	}
	return key
}

// serializeValue handles individual argument serialization based on type.
func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	switch tv := v.(type) {
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return tv.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "[]"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		// "|" keeps element boundaries distinct from ArgSeparator.
		return "[" + strings.Join(parts, "|") + "]"
	}

	if s.isBasicType(rv.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

// isBasicType checks if a kind represents a basic Go type
func (s *defaultKeySerializer) isBasicType(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback handles structs and maps. encoding/json sorts map keys, which
// keeps the output deterministic.
func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%T", v)
	}
	return string(data)
}
