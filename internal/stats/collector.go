// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the module.
const (
	// Analyzer metrics.
	MetricSubmissions  = "evalbar_submissions_total"
	MetricSuperseded   = "evalbar_superseded_total"
	MetricEngineSpawns = "evalbar_engine_spawns_total"
	MetricEngineFaults = "evalbar_engine_faults_total"
	MetricInfoRecords  = "evalbar_info_records_total"
	MetricDepth        = "evalbar_depth"
	MetricSearchTime   = "evalbar_search_seconds"

	// Evaluation cache metrics.
	MetricCacheHits   = "evalbar_cache_hits_total"
	MetricCacheMisses = "evalbar_cache_misses_total"
	MetricCacheSize   = "evalbar_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
