package connectutil

import (
	"github.com/bytedance/sonic"
)

// JSONCodec is a Connect codec for plain Go structs. It replaces Connect's
// protobuf-only JSON codec under the same name, so any Connect client that
// sends application/json can call our handlers.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return sonic.Unmarshal(data, v)
}
