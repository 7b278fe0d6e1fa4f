// Package codec provides body codecs for breeze clients.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
)

// Static errors for err113 compliance.
var (
	ErrUnknownCodec = errors.New("unknown codec")
)

// Codec names accepted by ByName.
const (
	NameJSON  = "json"
	NameSonic = "sonic"
)

// Sonic encodes and decodes with bytedance/sonic using encoding/json
// compatible settings.
type Sonic struct{}

// Encode implements breeze.Encoder.
func (Sonic) Encode(v any) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("sonic marshal: %w", err)
	}

	return data, nil
}

// Decode implements breeze.Decoder.
func (Sonic) Decode(data []byte, v any) error {
	err := sonic.ConfigStd.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("sonic unmarshal: %w", err)
	}

	return nil
}

// ByName returns the codec registered under name. An empty name selects JSON.
func ByName(name string) (breeze.Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameJSON:
		return breeze.JSONCodec{}, nil
	case NameSonic:
		return Sonic{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
}
