package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func mustDecodeRecord(t *testing.T, b []byte) (int64, []byte) {
	t.Helper()
	ts, p, err := DecodeRecord(b)
	if err != nil {
		t.Fatalf("DecodeRecord error: %v", err)
	}
	return ts, p
}

func TestRecordRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		ts      int64
		payload []byte
	}{
		{0, nil},
		{1_700_000_000_000, []byte("hello")},
		{math.MaxInt64, []byte{0, 1, 2, 3, 4}},
		{-1, []byte("x")},
	}
	for _, tc := range cases {
		enc := EncodeRecord(tc.ts, tc.payload)
		ts, p := mustDecodeRecord(t, enc)
		if ts != tc.ts {
			t.Fatalf("updatedAt mismatch: got %d want %d", ts, tc.ts)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRecordRejectsTrailingBytes(t *testing.T) {
	enc := EncodeRecord(7, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, _, err := DecodeRecord(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestRecordCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeRecord(1, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := DecodeRecord(badMagic); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("bad magic: want ErrCorrupt, got %v", err)
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := DecodeRecord(badVer); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("bad version: want ErrCorrupt, got %v", err)
	}

	badLen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(badLen[13:17], 1<<20)
	if _, _, err := DecodeRecord(badLen); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("bad vlen: want ErrCorrupt, got %v", err)
	}

	if _, _, err := DecodeRecord(enc[:10]); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("short header: want ErrCorrupt, got %v", err)
	}
}

func TestJSONMergesTimestamp(t *testing.T) {
	out, err := EncodeJSON(1234, []byte(`{"permissions":["a","b"],"updatedAt":1}`))
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("stored record is not JSON: %v", err)
	}
	if m["updatedAt"] != float64(1234) {
		t.Fatalf("updatedAt not overwritten: %v", m["updatedAt"])
	}

	ts, payload, err := DecodeJSON(out)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if ts != 1234 {
		t.Fatalf("updatedAt: got %d want 1234", ts)
	}
	if string(payload) != `{"permissions":["a","b"]}` {
		t.Fatalf("payload should drop the reserved member, got %s", payload)
	}
}

func TestJSONRejectsNonObjects(t *testing.T) {
	for _, in := range []string{`[1,2]`, `"s"`, `42`, `null`, `{`} {
		if _, err := EncodeJSON(1, []byte(in)); !errors.Is(err, ErrNotObject) {
			t.Fatalf("EncodeJSON(%s): want ErrNotObject, got %v", in, err)
		}
	}
}

func TestJSONMissingTimestamp(t *testing.T) {
	for _, in := range []string{`{"a":1}`, `{"updatedAt":null}`, `{"updatedAt":"yesterday"}`} {
		if _, _, err := DecodeJSON([]byte(in)); !errors.Is(err, ErrNoTimestamp) {
			t.Fatalf("DecodeJSON(%s): want ErrNoTimestamp, got %v", in, err)
		}
	}
	if _, _, err := DecodeJSON([]byte(`not json`)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got %v", err)
	}
}

func TestJSONAcceptsFloatTimestamp(t *testing.T) {
	ts, _, err := DecodeJSON([]byte(`{"updatedAt":1.7e12}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if ts != 1_700_000_000_000 {
		t.Fatalf("got %d", ts)
	}
}
