package payloadkit

import (
	json "github.com/goccy/go-json"
)

// Codec converts between raw body bytes and generic Go values. It is the
// fallback (de)serializer the pipeline uses when a resource has no schema
// for the current method and direction, and the first decode step before
// a request schema runs.
//
// Implementations must be safe for concurrent use; one Codec instance
// serves every request passing through a Transcoder.
type Codec interface {
	// Encode serializes v into body bytes.
	Encode(v any) ([]byte, error)
	// Decode parses body bytes into a generic value (for JSON: map[string]any,
	// []any, string, float64, bool, or nil).
	Decode(data []byte) (any, error)
}

// JSONCodec is the default Codec. It uses github.com/goccy/go-json, a
// drop-in replacement for encoding/json with considerably faster
// marshaling on the hot path.
type JSONCodec struct{}

// Encode serializes v as JSON.
func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode parses data as JSON into a generic value.
func (JSONCodec) Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
