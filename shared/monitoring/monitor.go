package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks the outcome of pipeline runs for health reporting.
type Monitor struct {
	mu             sync.Mutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	totalRuns      int
	partialRuns    int
	failedRuns     int
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.totalRuns++
	m.mu.Unlock()

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

// RecordPartialFailure notes a run where some batches failed but results were
// still produced. Partial failures do not change health status.
func (m *Monitor) RecordPartialFailure(summary string, err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.totalRuns++
	m.partialRuns++
	m.mu.Unlock()

	log.Printf("⚠️  PARTIAL FAILURE: %s - %s (Duration: %v)", err.Error(), summary, duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.totalRuns++
	m.failedRuns++
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
	log.Printf("Failure occurred at: %s", time.Now().Format("2006-01-02 15:04:05"))
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}

	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	counts := fmt.Sprintf("%d runs, %d partial, %d failed", m.totalRuns, m.partialRuns, m.failedRuns)
	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s - %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary, counts)
	}
	return fmt.Sprintf("❌ Last run failed: %s - %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary, counts)
}
