package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Instruments render the Prometheus text exposition format. Series are
// written in label order so scrapes are stable.

// series is a named family of float values keyed by rendered label set.
type series struct {
	name       string
	help       string
	kind       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func newSeries(kind, name, help string, labels []string) series {
	return series{name: name, help: help, kind: kind, labelNames: labels, values: map[string]float64{}}
}

func (s *series) update(values []string, fn func(old float64) float64) {
	lbl := labelString(s.labelNames, values)
	s.mu.Lock()
	s.values[lbl] = fn(s.values[lbl])
	s.mu.Unlock()
}

func (s *series) get(values []string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[labelString(s.labelNames, values)]
}

func (s *series) WritePrometheus(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return writeSeries(w, s.name, s.help, s.kind, s.values)
}

// CounterVec only goes up; negative deltas are ignored.
type CounterVec struct{ series }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{newSeries("counter", name, help, labels)}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v < 0 {
		return
	}
	c.update(values, func(old float64) float64 { return old + v })
}

// Value reports the current count for one label set.
func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.series.WritePrometheus(w)
}

type Counter struct{ vec *CounterVec }

func NewCounter(name, help string) *Counter {
	return &Counter{vec: NewCounterVec(name, help, nil)}
}

func (c *Counter) Inc()           { c.Add(1) }
func (c *Counter) Add(v float64)  { c.vec.Add(v) }
func (c *Counter) Value() float64 { return c.vec.Value() }

func (c *Counter) WritePrometheus(w io.Writer) error { return c.vec.WritePrometheus(w) }

type GaugeVec struct{ series }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{newSeries("gauge", name, help, labels)}
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g == nil {
		return
	}
	g.update(values, func(float64) float64 { return v })
}

func (g *GaugeVec) add(v float64, values ...string) {
	if g == nil {
		return
	}
	g.update(values, func(old float64) float64 { return old + v })
}

func (g *GaugeVec) Value(values ...string) float64 {
	if g == nil {
		return 0
	}
	return g.get(values)
}

func (g *GaugeVec) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.series.WritePrometheus(w)
}

type Gauge struct{ vec *GaugeVec }

func NewGauge(name, help string) *Gauge {
	return &Gauge{vec: NewGaugeVec(name, help, nil)}
}

func (g *Gauge) Set(v float64)  { g.vec.Set(v) }
func (g *Gauge) Inc()           { g.vec.add(1) }
func (g *Gauge) Dec()           { g.vec.add(-1) }
func (g *Gauge) Value() float64 { return g.vec.Value() }

func (g *Gauge) WritePrometheus(w io.Writer) error { return g.vec.WritePrometheus(w) }

type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	values     map[string]*histogram
}

type histogram struct {
	counts []uint64 // per bucket, last slot is +Inf
	sum    float64
	total  uint64
}

var defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: b, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets)+1)}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
	hist.counts[len(h.buckets)]++
}

// Count reports how many observations one label set has seen.
func (h *HistogramVec) Count(values ...string) uint64 {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if hist, ok := h.values[labelString(h.labelNames, values)]; ok {
		return hist.total
	}
	return 0
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, k := range sortedKeys(h.values) {
		v := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), v.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), v.counts[len(h.buckets)]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n", h.name, k, v.sum); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_count%s %d\n", h.name, k, v.total); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, name, help, kind string) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", name, help); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	return err
}

func writeSeries(w io.Writer, name, help, kind string, values map[string]float64) error {
	if err := writeHeader(w, name, help, kind); err != nil {
		return err
	}
	for _, k := range sortedKeys(values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", name, k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(escapeLabel(val))
		b.WriteString("\"")
	}
	b.WriteString("}")
	return b.String()
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	return strings.ReplaceAll(v, "\n", "\\n")
}

func withLe(labels string, le string) string {
	le = escapeLabel(le)
	if labels == "" || labels == "{}" {
		return "{le=\"" + le + "\"}"
	}
	return strings.TrimSuffix(labels, "}") + ",le=\"" + le + "\"}"
}
