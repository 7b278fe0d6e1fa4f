package breeze

import "encoding/json"

// Encoder turns an item into request body bytes.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Decoder fills v from response body bytes.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Codec is both an Encoder and a Decoder.
type Codec interface {
	Encoder
	Decoder
}

// JSONCodec is the default Codec, backed by encoding/json.
type JSONCodec struct{}

// Encode implements Encoder.
func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode implements Decoder.
func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
