package cache

import (
	"fmt"
	"strconv"
)

// ClientError represents a cache client error.
type ClientError string

// Error implements the error interface.
func (e ClientError) Error() string {
	return string(e)
}

// Client error sentinels, matched with errors.Is.
const (
	ErrUnsupportedType ClientError = "unsupported value type"
	ErrDecode          ClientError = "cannot decode stored value"
)

// encode converts a supported value into the byte form kept in the
// store. Integers are written base-10 and floats with the shortest
// representation that round-trips, so stored numbers read back as the
// exact text a Redis client would have written.
func encode(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case int:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}
}

// DecodeFunc converts raw stored bytes into a typed value.
type DecodeFunc[T any] func(data []byte) (T, error)

// AsBytes returns the stored bytes unchanged.
func AsBytes(data []byte) ([]byte, error) {
	return data, nil
}

// AsString decodes the stored bytes as text.
func AsString(data []byte) (string, error) {
	return string(data), nil
}

// AsInt decodes the stored bytes as a base-10 integer.
func AsInt(data []byte) (int64, error) {
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrDecode, data)
	}
	return n, nil
}

// AsFloat decodes the stored bytes as a decimal float.
func AsFloat(data []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a float", ErrDecode, data)
	}
	return f, nil
}
