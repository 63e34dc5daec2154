package metrics

import (
	"runtime"
	"time"
)

// RuntimeCollector samples Go runtime statistics into gauges.
type RuntimeCollector struct {
	goroutines *Gauge
	heapAlloc  *Gauge
	heapInuse  *Gauge
	numGC      *Gauge
	gcPause    *Gauge
	uptime     *Gauge

	startTime time.Time
}

// NewRuntimeCollector registers the runtime gauges on r.
func NewRuntimeCollector(r *Registry) *RuntimeCollector {
	rc := &RuntimeCollector{
		startTime:  time.Now(),
		goroutines: r.NewGauge("go_goroutines", "Number of goroutines that currently exist"),
		heapAlloc:  r.NewGauge("go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use"),
		heapInuse:  r.NewGauge("go_memstats_heap_inuse_bytes", "Number of heap bytes that are in use"),
		numGC:      r.NewGauge("go_gc_cycles_total", "Total number of completed GC cycles"),
		gcPause:    r.NewGauge("go_gc_duration_seconds", "Total GC pause duration in seconds"),
		uptime:     r.NewGauge("fautty_uptime_seconds", "Seconds since the proxy started"),
	}
	info := r.NewGauge("go_info", "Information about the Go environment", "version")
	if vec, err := info.WithLabels(runtime.Version()); err == nil {
		vec.Set(1)
	}
	return rc
}

// Uptime returns the time elapsed since the collector was created.
func (rc *RuntimeCollector) Uptime() time.Duration {
	return time.Since(rc.startTime)
}

// Collect refreshes every runtime gauge.
func (rc *RuntimeCollector) Collect() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	_ = rc.uptime.Set(rc.Uptime().Seconds())
	_ = rc.goroutines.Set(float64(runtime.NumGoroutine()))
	_ = rc.heapAlloc.Set(float64(mem.HeapAlloc))
	_ = rc.heapInuse.Set(float64(mem.HeapInuse))
	_ = rc.numGC.Set(float64(mem.NumGC))
	_ = rc.gcPause.Set(float64(mem.PauseTotalNs) / 1e9)
}
