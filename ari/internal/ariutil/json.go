package ariutil

import (
	"bytes"
	"io"
	"reflect"

	"github.com/ugorji/go/codec"
)

var jsonHandle codec.JsonHandle

func init() {
	// ARI payloads are decoded into untyped trees; JSON objects always have
	// string keys.
	jsonHandle.MapType = reflect.TypeOf(map[string]interface{}(nil))
}

// Unmarshal decodes the JSON-encoded data and stores the result in the value
// pointed to by v.
func Unmarshal(data []byte, v interface{}) error {
	return Decode(bytes.NewReader(data), v)
}

// Decode decodes a JSON document read from r into v.
func Decode(r io.Reader, v interface{}) error {
	dec := codec.NewDecoder(r, &jsonHandle)
	return dec.Decode(v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &jsonHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
