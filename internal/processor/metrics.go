package processor

import (
	"sync/atomic"
	"time"
)

// ServiceMetrics are in-process counters logged by the dispatcher. The
// Prometheus series are recorded by the processor itself.
type ServiceMetrics struct {
	totalProcessed  atomic.Int64
	totalFailed     atomic.Int64
	totalDurationNs atomic.Int64
	startedAt       time.Time
}

type Stats struct {
	TotalProcessed int64
	TotalFailed    int64
	RatePerSecond  float64
	AvgDuration    time.Duration
	Uptime         time.Duration
}

func NewServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{startedAt: time.Now()}
}

func (m *ServiceMetrics) RecordSuccess(duration time.Duration) {
	m.totalProcessed.Add(1)
	m.totalDurationNs.Add(int64(duration))
}

func (m *ServiceMetrics) RecordFailure() {
	m.totalFailed.Add(1)
}

func (m *ServiceMetrics) GetStats() Stats {
	processed := m.totalProcessed.Load()
	uptime := time.Since(m.startedAt)

	s := Stats{
		TotalProcessed: processed,
		TotalFailed:    m.totalFailed.Load(),
		Uptime:         uptime,
	}
	if secs := uptime.Seconds(); secs > 0 {
		s.RatePerSecond = float64(processed) / secs
	}
	if processed > 0 {
		s.AvgDuration = time.Duration(m.totalDurationNs.Load() / processed)
	}
	return s
}
