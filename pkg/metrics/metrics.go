package metrics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values doesn't match the defined labels.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when attempting to add a negative value to a counter.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is returned when registering a metric with a name that is already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// atomicFloat64 stores float64 bits in a uint64 for lock-free updates.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(val float64) {
	a.bits.Store(math.Float64bits(val))
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// MetricType represents the type of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is the interface implemented by all metric types.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Collect returns all samples for exposition.
	Collect() []Sample
}

// Sample is a single exposed value with its labels.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// family holds one series per distinct label value combination.
type family[S any] struct {
	name       string
	help       string
	labelNames []string
	newSeries  func() *S

	mu     sync.RWMutex
	series map[string]*labeled[S]
	order  []string
}

type labeled[S any] struct {
	labels map[string]string
	s      *S
}

func (f *family[S]) init(name, help string, labelNames []string, newSeries func() *S) {
	f.name = name
	f.help = help
	f.labelNames = labelNames
	f.newSeries = newSeries
	f.series = make(map[string]*labeled[S])
}

func (f *family[S]) Name() string { return f.name }
func (f *family[S]) Help() string { return f.help }

// with returns the series for values, creating it on first use.
func (f *family[S]) with(kind MetricType, values []string) (*S, error) {
	if len(values) != len(f.labelNames) {
		return nil, fmt.Errorf("%w: %s %s expected %d labels, got %d",
			ErrLabelCountMismatch, kind, f.name, len(f.labelNames), len(values))
	}
	key := strings.Join(values, "\x00")

	f.mu.RLock()
	l, ok := f.series[key]
	f.mu.RUnlock()
	if ok {
		return l.s, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok = f.series[key]; ok {
		return l.s, nil
	}
	labels := make(map[string]string, len(values))
	for i, name := range f.labelNames {
		labels[name] = values[i]
	}
	l = &labeled[S]{labels: labels, s: f.newSeries()}
	f.series[key] = l
	f.order = append(f.order, key)
	return l.s, nil
}

// each visits series in creation order under the read lock.
func (f *family[S]) each(fn func(labels map[string]string, s *S)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, key := range f.order {
		l := f.series[key]
		fn(l.labels, l.s)
	}
}

// Counter is a monotonically increasing metric.
type Counter struct {
	family[atomicFloat64]
}

func newCounter(name, help string, labelNames []string) *Counter {
	c := &Counter{}
	c.init(name, help, labelNames, func() *atomicFloat64 { return new(atomicFloat64) })
	return c
}

// Type returns the metric type.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// WithLabels returns the series for the given label values.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	v, err := c.with(MetricTypeCounter, values)
	if err != nil {
		return nil, err
	}
	return &CounterVec{v: v}, nil
}

// Inc increments an unlabeled counter by 1.
func (c *Counter) Inc() error {
	return c.Add(1)
}

// Add adds delta to an unlabeled counter.
func (c *Counter) Add(delta float64) error {
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

// Collect returns all metric samples.
func (c *Counter) Collect() []Sample {
	var out []Sample
	c.each(func(labels map[string]string, v *atomicFloat64) {
		out = append(out, Sample{Name: c.name, Labels: labels, Value: v.Load()})
	})
	return out
}

// CounterVec is a counter bound to one label combination.
type CounterVec struct {
	v *atomicFloat64
}

// Inc increments the counter by 1.
func (v *CounterVec) Inc() error {
	return v.Add(1)
}

// Add adds delta to the counter. Negative deltas are rejected.
func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	v.v.Add(delta)
	return nil
}

// Value returns the current count.
func (v *CounterVec) Value() float64 { return v.v.Load() }

// Gauge is a metric that can go up and down.
type Gauge struct {
	family[atomicFloat64]
}

func newGauge(name, help string, labelNames []string) *Gauge {
	g := &Gauge{}
	g.init(name, help, labelNames, func() *atomicFloat64 { return new(atomicFloat64) })
	return g
}

// Type returns the metric type.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// WithLabels returns the series for the given label values.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	v, err := g.with(MetricTypeGauge, values)
	if err != nil {
		return nil, err
	}
	return &GaugeVec{v: v}, nil
}

// Set sets an unlabeled gauge.
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Add adds delta to an unlabeled gauge.
func (g *Gauge) Add(delta float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Add(delta)
	return nil
}

// Collect returns all metric samples.
func (g *Gauge) Collect() []Sample {
	var out []Sample
	g.each(func(labels map[string]string, v *atomicFloat64) {
		out = append(out, Sample{Name: g.name, Labels: labels, Value: v.Load()})
	})
	return out
}

// GaugeVec is a gauge bound to one label combination.
type GaugeVec struct {
	v *atomicFloat64
}

// Set sets the gauge to value.
func (v *GaugeVec) Set(value float64) { v.v.Store(value) }

// Add adds delta to the gauge.
func (v *GaugeVec) Add(delta float64) { v.v.Add(delta) }

// Inc increments the gauge by 1.
func (v *GaugeVec) Inc() { v.v.Add(1) }

// Dec decrements the gauge by 1.
func (v *GaugeVec) Dec() { v.v.Add(-1) }

// Value returns the current gauge value.
func (v *GaugeVec) Value() float64 { return v.v.Load() }

// Histogram tracks the distribution of observed values.
type Histogram struct {
	family[histogramSeries]
	buckets []float64
}

type histogramSeries struct {
	counts []atomic.Uint64
	sum    atomicFloat64
	count  atomic.Uint64
}

func newHistogram(name, help string, buckets []float64, labelNames []string) *Histogram {
	bounds := slices.Clone(buckets)
	slices.Sort(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}
	h := &Histogram{buckets: bounds}
	h.init(name, help, labelNames, func() *histogramSeries {
		return &histogramSeries{counts: make([]atomic.Uint64, len(bounds))}
	})
	return h
}

// Type returns the metric type.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// WithLabels returns the series for the given label values.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	s, err := h.with(MetricTypeHistogram, values)
	if err != nil {
		return nil, err
	}
	return &HistogramVec{s: s, buckets: h.buckets}, nil
}

// Observe records a value in an unlabeled histogram.
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	vec.Observe(value)
	return nil
}

// Collect returns the cumulative bucket samples followed by _sum and _count.
func (h *Histogram) Collect() []Sample {
	var out []Sample
	h.each(func(labels map[string]string, s *histogramSeries) {
		var cumulative uint64
		for i, bound := range h.buckets {
			cumulative += s.counts[i].Load()
			bl := make(map[string]string, len(labels)+1)
			for k, v := range labels {
				bl[k] = v
			}
			bl["le"] = formatFloat(bound)
			out = append(out, Sample{Name: h.name + "_bucket", Labels: bl, Value: float64(cumulative)})
		}
		out = append(out,
			Sample{Name: h.name + "_sum", Labels: labels, Value: s.sum.Load()},
			Sample{Name: h.name + "_count", Labels: labels, Value: float64(s.count.Load())},
		)
	})
	return out
}

// HistogramVec is a histogram bound to one label combination.
type HistogramVec struct {
	s       *histogramSeries
	buckets []float64
}

// Observe records a value.
func (v *HistogramVec) Observe(value float64) {
	for i, bound := range v.buckets {
		if value <= bound {
			v.s.counts[i].Add(1)
			break
		}
	}
	v.s.sum.Add(value)
	v.s.count.Add(1)
}

// Count returns the number of observations.
func (v *HistogramVec) Count() uint64 { return v.s.count.Load() }

// DefaultBuckets are the default histogram buckets for request durations (in seconds).
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
