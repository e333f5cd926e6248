// Package zap adapts a *zap.Logger to dscache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/dscache"
)

var _ dscache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New names the logger "dscache" so cache lines are easy to filter.
func New(l *zap.Logger) Logger { return Logger{L: l.Named("dscache")} }

func (z Logger) Debug(msg string, f dscache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f dscache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f dscache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f dscache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f dscache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		switch v := f[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
