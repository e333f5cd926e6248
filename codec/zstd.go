package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses the output of Inner. Only useful with binary framing,
// since the compressed bytes are not a JSON object.
// Construct with NewZstd; the zero value is not ready to use.
type Zstd[V any] struct {
	Inner Codec[V]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewZstd wraps inner. The encoder and decoder are safe for concurrent
// EncodeAll/DecodeAll use and are shared by all calls.
func NewZstd[V any](inner Codec[V], level zstd.EncoderLevel) (*Zstd[V], error) {
	if inner == nil {
		return nil, fmt.Errorf("zstd codec: inner codec is required")
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, err
	}
	return &Zstd[V]{Inner: inner, enc: enc, dec: dec}, nil
}

func (c *Zstd[V]) Name() string { return c.Inner.Name() + "+zstd" }

func (c *Zstd[V]) Encode(v V) ([]byte, error) {
	raw, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
}

func (c *Zstd[V]) Decode(b []byte) (V, error) {
	raw, err := c.dec.DecodeAll(b, nil)
	if err != nil {
		var zero V
		return zero, fmt.Errorf("zstd decode: %w", err)
	}
	return c.Inner.Decode(raw)
}

// Close releases the decoder's background goroutines.
func (c *Zstd[V]) Close() {
	c.dec.Close()
	_ = c.enc.Close()
}
