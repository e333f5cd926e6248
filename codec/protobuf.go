package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto messages. Requires binary framing.
// Marshaling is deterministic so equal messages produce equal records.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *pb.Role { return &pb.Role{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

var marshalOpts = proto.MarshalOptions{Deterministic: true}

func (Protobuf[T]) Name() string { return "protobuf" }

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return marshalOpts.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
