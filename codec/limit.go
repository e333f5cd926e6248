package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is returned by Limit for payloads over MaxDecode.
var ErrTooLarge = errors.New("codec: payload too large")

// Limit bounds what a read will decode. Records may be written by
// populators outside this process. Encode is forwarded unchanged and
// MaxDecode <= 0 disables the check.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

func (c Limit[V]) Name() string               { return c.Inner.Name() }
func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
