package wallet

import "log/slog"

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordCacheHit(string)      {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)     {}
func (n *NoopMetricsCollector) RecordError(string, string) {}

// LogMetricsCollector reports read path metrics through a structured logger:
// cache hits and misses at debug level, errors at warn.
type LogMetricsCollector struct {
	log *slog.Logger
}

func NewLogMetricsCollector(log *slog.Logger) *LogMetricsCollector {
	if log == nil {
		log = slog.Default()
	}
	return &LogMetricsCollector{log: log.With("component", "wallet_metrics")}
}

func (m *LogMetricsCollector) RecordCacheHit(key string) {
	m.log.Debug("balance cache hit", "customer", key)
}

func (m *LogMetricsCollector) RecordCacheMiss(key string) {
	m.log.Debug("balance cache miss", "customer", key)
}

func (m *LogMetricsCollector) RecordError(operation, errType string) {
	m.log.Warn("wallet read error", "operation", operation, "source", errType)
}
