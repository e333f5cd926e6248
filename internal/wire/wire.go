package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	version byte = 1

	// TimestampField is the reserved member stamped into every JSON record.
	TimestampField = "updatedAt"
)

var (
	ErrCorrupt     = errors.New("dscache: corrupt entry")
	ErrNoTimestamp = errors.New("dscache: record has no " + TimestampField)
	ErrNotObject   = errors.New("dscache: payload is not a JSON object")
	magic4         = [...]byte{'D', 'S', 'C', 'R'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Binary: magic(4) | ver(1) | updatedAt(i64 be) | vlen(u32 be) | payload(vlen)
func EncodeRecord(updatedAt int64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(updatedAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodeRecord(b []byte) (updatedAt int64, payload []byte, err error) {
	const hdr = 4 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}

	off := 5

	updatedAt = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact length, no trailing bytes
		return 0, nil, ErrCorrupt
	}

	return updatedAt, b[off : off+vlen], nil
}

// EncodeJSON merges updatedAt into a JSON object payload. An existing
// updatedAt member is overwritten.
func EncodeJSON(updatedAt int64, payload []byte) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil || obj == nil {
		return nil, ErrNotObject
	}
	ts, _ := json.Marshal(updatedAt)
	obj[TimestampField] = ts
	return json.Marshal(obj)
}

// DecodeJSON splits a stored JSON record into its timestamp and the payload
// object without the reserved member.
func DecodeJSON(b []byte) (updatedAt int64, payload []byte, err error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil || obj == nil {
		return 0, nil, ErrCorrupt
	}
	raw, ok := obj[TimestampField]
	if !ok || string(raw) == "null" {
		return 0, nil, ErrNoTimestamp
	}
	var ts json.Number
	if err := json.Unmarshal(raw, &ts); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNoTimestamp, err)
	}
	if updatedAt, err = ts.Int64(); err != nil {
		f, ferr := ts.Float64()
		if ferr != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrNoTimestamp, err)
		}
		updatedAt = int64(f)
	}
	delete(obj, TimestampField)
	payload, err = json.Marshal(obj)
	if err != nil {
		return 0, nil, err
	}
	return updatedAt, payload, nil
}
