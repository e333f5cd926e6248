// Package sloghooks logs dscache events through log/slog.
package sloghooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/dscache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StaleHitEvery uint64
	MissEvery     uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	staleCtr atomic.Uint64
	missCtr  atomic.Uint64
}

var _ dscache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

// Hit is too frequent to log.
func (h *Hooks) Hit(string) {}

func (h *Hooks) StaleHit(storageKey string) {
	if h.l == nil || !sample(h.opts.StaleHitEvery, &h.staleCtr) {
		return
	}
	h.l.Debug("dscache.stale_hit", "key", h.redact(storageKey))
}

func (h *Hooks) Miss(storageKey string, attempt int) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("dscache.miss",
		"key", h.redact(storageKey),
		"attempt", attempt)
}

func (h *Hooks) Exhausted(storageKey string, outcome string) {
	if h.l == nil {
		return
	}
	level := slog.LevelInfo
	if outcome == dscache.OutcomeTimeout {
		level = slog.LevelWarn
	}
	h.l.Log(context.Background(), level, "dscache.exhausted",
		"key", h.redact(storageKey),
		"outcome", outcome)
}

func (h *Hooks) CorruptRecord(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("dscache.corrupt_record",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) PopulateError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("dscache.populate_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) RevalidateError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("dscache.revalidate_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ClearError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("dscache.clear_error",
		"key", h.redact(storageKey),
		"err", err)
}
