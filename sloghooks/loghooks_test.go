package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unkn0wn-root/dscache"
)

func newBuf(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestRedactsKeysByDefault(t *testing.T) {
	h, buf := newBuf(Options{})
	h.PopulateError("Users:alice", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "dscache.populate_error")
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "alice")
}

func TestCustomRedact(t *testing.T) {
	h, buf := newBuf(Options{Redact: func(k string) string { return k }})
	h.Exhausted("Users:alice", dscache.OutcomeTimeout)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "key=Users:alice outcome=timeout")
}

func TestSampling(t *testing.T) {
	h, buf := newBuf(Options{MissEvery: 3})
	for i := 0; i < 9; i++ {
		h.Miss("k", i)
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "dscache.miss"))
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	assert.NotPanics(t, func() {
		h.StaleHit("k")
		h.CorruptRecord("k", errors.New("x"))
		h.ClearError("k", errors.New("x"))
	})
}
