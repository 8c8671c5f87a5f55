// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// Collectors live on a private registry so several Hooks values can coexist
// in one process. The CLI writes the registry in the text exposition format
// for the node exporter's textfile collector.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/femtopgm/pkg/observability"
)

// Hooks records compilation and cache events.
type Hooks struct {
	registry *prometheus.Registry

	CompilesTotal       *prometheus.CounterVec
	CompileDuration     prometheus.Histogram
	ProgramsTotal       *prometheus.CounterVec
	ProgramInstructions *prometheus.HistogramVec
	FabricationSeconds  *prometheus.GaugeVec
	BytesWritten        *prometheus.CounterVec
	CacheEvents         *prometheus.CounterVec
}

var (
	_ observability.CompileHooks = (*Hooks)(nil)
	_ observability.CacheHooks   = (*Hooks)(nil)
)

// NewHooks registers the collectors on a fresh registry.
func NewHooks() *Hooks {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Hooks{
		registry: reg,
		CompilesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femtopgm_compiles_total",
				Help: "Total number of cell compilations",
			},
			[]string{"status"},
		),
		CompileDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "femtopgm_compile_duration_seconds",
				Help:    "Wall time of a cell compilation",
				Buckets: prometheus.DefBuckets,
			},
		),
		ProgramsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femtopgm_programs_total",
				Help: "Total number of compiled programs",
			},
			[]string{"class", "status"},
		),
		ProgramInstructions: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "femtopgm_program_instructions",
				Help:    "Instructions per compiled program",
				Buckets: prometheus.ExponentialBuckets(16, 4, 8),
			},
			[]string{"class"},
		),
		FabricationSeconds: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "femtopgm_fabrication_seconds",
				Help: "Estimated fabrication time of the last program per class",
			},
			[]string{"class"},
		),
		BytesWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femtopgm_bytes_written_total",
				Help: "Bytes of program text written",
			},
			[]string{"status"},
		),
		CacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "femtopgm_cache_events_total",
				Help: "Cache lookups and writes",
			},
			[]string{"key_type", "event"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (h *Hooks) Registry() *prometheus.Registry { return h.registry }

// WriteToTextfile writes all collectors to path atomically.
func (h *Hooks) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func (h *Hooks) OnCompileStart(context.Context, string, int) {}

func (h *Hooks) OnProgramComplete(_ context.Context, class string, instructions int, seconds float64, _ time.Duration, err error) {
	h.ProgramsTotal.WithLabelValues(class, status(err)).Inc()
	if err != nil {
		return
	}
	h.ProgramInstructions.WithLabelValues(class).Observe(float64(instructions))
	h.FabricationSeconds.WithLabelValues(class).Set(seconds)
}

func (h *Hooks) OnCompileComplete(_ context.Context, _ string, _ int, duration time.Duration, err error) {
	h.CompilesTotal.WithLabelValues(status(err)).Inc()
	h.CompileDuration.Observe(duration.Seconds())
}

func (h *Hooks) OnWrite(_ context.Context, _ string, size int, err error) {
	h.BytesWritten.WithLabelValues(status(err)).Add(float64(size))
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.CacheEvents.WithLabelValues(keyType, "set").Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
