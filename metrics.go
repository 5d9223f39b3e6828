package langid

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    identifyHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordIdentify(bytes int, duration time.Duration) {
//	    p.identifyHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordLoad is called after each database load attempt.
	// languages is the number of languages loaded, err is nil if successful.
	RecordLoad(languages int, duration time.Duration, err error)

	// RecordIdentify is called after each identification.
	// bytes is the input length.
	RecordIdentify(bytes int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordIdentify(int, time.Duration)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadTotalNanos     atomic.Int64
	IdentifyCount      atomic.Int64
	IdentifyBytes      atomic.Int64
	IdentifyTotalNanos atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordIdentify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIdentify(bytes int, duration time.Duration) {
	b.IdentifyCount.Add(1)
	b.IdentifyBytes.Add(int64(bytes))
	b.IdentifyTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		IdentifyCount:    b.IdentifyCount.Load(),
		IdentifyBytes:    b.IdentifyBytes.Load(),
		IdentifyAvgNanos: b.getAvgIdentifyNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgIdentifyNanos() int64 {
	count := b.IdentifyCount.Load()
	if count == 0 {
		return 0
	}
	return b.IdentifyTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount        int64
	LoadErrors       int64
	IdentifyCount    int64
	IdentifyBytes    int64
	IdentifyAvgNanos int64
}
