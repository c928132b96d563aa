package merchant

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordCacheHit(string)          {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)         {}
func (n *NoopMetricsCollector) RecordOperation(string, string) {}
