package outbox

import (
	"sync"
	"time"
)

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordBatchProcessed(count int, duration time.Duration)
	RecordOutboxLag(lag int)
	RecordPublishAttempt(eventType string, attempt int, success bool)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
}
func (n *NoOpMetricsCollector) RecordBatchProcessed(count int, duration time.Duration) {}
func (n *NoOpMetricsCollector) RecordOutboxLag(lag int)                                {}
func (n *NoOpMetricsCollector) RecordPublishAttempt(eventType string, attempt int, success bool) {
}

// CounterMetrics keeps in-process counters, exposed on the relay's /metrics.
type CounterMetrics struct {
	mu             sync.Mutex
	Published      map[string]uint64
	Failed         map[string]uint64
	RetryAttempts  uint64
	LastBatchSize  int
	LastBatchTook  time.Duration
	LastOutboxLag  int
	TotalPublishMs int64
}

func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{
		Published: make(map[string]uint64),
		Failed:    make(map[string]uint64),
	}
}

func (m *CounterMetrics) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.Published[eventType]++
	} else {
		m.Failed[eventType]++
	}
	m.TotalPublishMs += duration.Milliseconds()
}

func (m *CounterMetrics) RecordBatchProcessed(count int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastBatchSize = count
	m.LastBatchTook = duration
}

func (m *CounterMetrics) RecordOutboxLag(lag int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastOutboxLag = lag
}

func (m *CounterMetrics) RecordPublishAttempt(eventType string, attempt int, success bool) {
	if attempt <= 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetryAttempts++
}

// Snapshot copies the counters for reporting.
func (m *CounterMetrics) Snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	published := make(map[string]uint64, len(m.Published))
	for k, v := range m.Published {
		published[k] = v
	}
	failed := make(map[string]uint64, len(m.Failed))
	for k, v := range m.Failed {
		failed[k] = v
	}
	return map[string]any{
		"published":        published,
		"failed":           failed,
		"retry_attempts":   m.RetryAttempts,
		"last_batch_size":  m.LastBatchSize,
		"last_batch_ms":    m.LastBatchTook.Milliseconds(),
		"outbox_lag":       m.LastOutboxLag,
		"total_publish_ms": m.TotalPublishMs,
	}
}
