package kvstore

import (
	"bytes"
	"encoding/gob"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
)

// encode serializes v with encoding/gob, the idiomatic Go stand-in for the
// original's bincode: a compact, reversible, schema-driven binary codec
// that needs no struct tags because the static Go type supplies the
// schema at both encode and decode time.
func encode[V any](v V) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, corpuserr.Serialization("encode value", err)
	}
	return buf.Bytes(), nil
}

// decode deserializes a gob-encoded value of type V from data.
func decode[V any](data []byte) (V, error) {
	var v V
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		var zero V
		return zero, corpuserr.Serialization("decode value", err)
	}
	return v, nil
}
