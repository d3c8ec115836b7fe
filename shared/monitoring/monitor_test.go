package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMonitorHealthTransitions(t *testing.T) {
	m := NewMonitor()

	if !m.IsHealthy() {
		t.Error("new monitor should be healthy before any runs")
	}
	if got := m.GetStatusSummary(); got != "No runs yet" {
		t.Errorf("GetStatusSummary() = %q, want %q", got, "No runs yet")
	}

	m.RecordSuccess("classified 12 videos", time.Second)
	if !m.IsHealthy() {
		t.Error("monitor should be healthy after a successful run")
	}
	if !strings.Contains(m.GetStatusSummary(), "classified 12 videos") {
		t.Errorf("GetStatusSummary() = %q, want it to mention the run summary", m.GetStatusSummary())
	}

	m.RecordCriticalFailure(errors.New("quota exhausted"), time.Second)
	if m.IsHealthy() {
		t.Error("monitor should be unhealthy after a critical failure")
	}

	m.RecordSuccess("classified 8 videos", time.Second)
	if !m.IsHealthy() {
		t.Error("monitor should recover after a subsequent success")
	}
}

func TestPartialFailureKeepsHealthy(t *testing.T) {
	m := NewMonitor()
	m.RecordSuccess("classified 10 videos", time.Second)

	m.RecordPartialFailure("classified 7 of 12", errors.New("1 batch failed"), time.Second)
	if !m.IsHealthy() {
		t.Error("partial failure must not flip health status")
	}
	if !strings.Contains(m.GetStatusSummary(), "1 partial") {
		t.Errorf("GetStatusSummary() = %q, want partial run count", m.GetStatusSummary())
	}
}

func TestHealthHandlerStatusCodes(t *testing.T) {
	m := NewMonitor()
	server := NewHealthServer(m, "0")

	recorder := httptest.NewRecorder()
	server.healthHandler(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("healthy /health status = %d, want %d", recorder.Code, http.StatusOK)
	}

	m.RecordCriticalFailure(errors.New("api key rejected"), time.Second)
	recorder = httptest.NewRecorder()
	server.healthHandler(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy /health status = %d, want %d", recorder.Code, http.StatusServiceUnavailable)
	}

	recorder = httptest.NewRecorder()
	server.statusHandler(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("/status status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if !strings.Contains(recorder.Body.String(), "failed") {
		t.Errorf("/status body = %q, want failure summary", recorder.Body.String())
	}
}
