// Package codec converts cached values to and from bytes.
//
// With the default JSON record framing the codec must produce a JSON object;
// the binary framing accepts any codec.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
	// Name identifies the codec in errors and logs, e.g. "json".
	Name() string
}
