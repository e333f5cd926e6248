// Package prom counts dscache events with prometheus collectors.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/dscache"
)

type Hooks struct {
	hitTotal       prometheus.Counter
	staleHitTotal  prometheus.Counter
	missTotal      prometheus.Counter
	exhaustedTotal *prometheus.CounterVec
	corruptTotal   prometheus.Counter
	errorTotal     *prometheus.CounterVec
}

var _ dscache.Hooks = (*Hooks)(nil)

// New builds the collectors. tag becomes a constant "tag" label so several
// caches can share one registry.
func New(tag string) *Hooks {
	lb := map[string]string{"tag": tag}
	return &Hooks{
		hitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dscache_hit_total",
			Help:        "The total number of reads served a fresh record",
			ConstLabels: lb,
		}),
		staleHitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dscache_stale_hit_total",
			Help:        "The total number of reads served a stale record",
			ConstLabels: lb,
		}),
		missTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dscache_miss_total",
			Help:        "The total number of fetches that found no record",
			ConstLabels: lb,
		}),
		exhaustedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "dscache_exhausted_total",
			Help:        "The total number of reads that gave up waiting for population",
			ConstLabels: lb,
		}, []string{"outcome"}),
		corruptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dscache_corrupt_record_total",
			Help:        "The total number of stored values read as absent",
			ConstLabels: lb,
		}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "dscache_background_error_total",
			Help:        "The total number of errors reported to the error sink",
			ConstLabels: lb,
		}, []string{"kind"}),
	}
}

func (h *Hooks) RegMetricsTo(r prometheus.Registerer) error {
	for _, collector := range [...]prometheus.Collector{
		h.hitTotal, h.staleHitTotal, h.missTotal, h.exhaustedTotal, h.corruptTotal, h.errorTotal,
	} {
		if err := r.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) Hit(string)                  { h.hitTotal.Inc() }
func (h *Hooks) StaleHit(string)             { h.staleHitTotal.Inc() }
func (h *Hooks) Miss(string, int)            { h.missTotal.Inc() }
func (h *Hooks) CorruptRecord(string, error) { h.corruptTotal.Inc() }
func (h *Hooks) PopulateError(string, error) { h.errorTotal.WithLabelValues("populate").Inc() }
func (h *Hooks) ClearError(string, error)    { h.errorTotal.WithLabelValues("clear").Inc() }
func (h *Hooks) RevalidateError(string, error) {
	h.errorTotal.WithLabelValues("revalidate").Inc()
}
func (h *Hooks) Exhausted(_ string, outcome string) {
	h.exhaustedTotal.WithLabelValues(outcome).Inc()
}
