package codec

// Bytes stores []byte values as-is. Requires binary framing.
type Bytes struct{}

// String stores Go strings as raw UTF-8 bytes. Requires binary framing.
type String struct{}

var (
	_ Codec[[]byte] = Bytes{}
	_ Codec[string] = String{}
)

func (Bytes) Name() string                    { return "bytes" }
func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

func (String) Name() string                    { return "string" }
func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
