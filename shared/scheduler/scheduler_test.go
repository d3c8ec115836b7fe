package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TKay76/the-trend-navigator/shared/config"
)

type stubMetrics struct{ summary string }

func (s stubMetrics) GetSummary() string { return s.summary }

type stubAgent struct {
	name    string
	initErr error
	runFn   func(ctx context.Context, events *AgentEvents) error
	runs    int
}

func (s *stubAgent) Name() string      { return s.name }
func (s *stubAgent) Initialize() error { return s.initErr }

func (s *stubAgent) RunOnce(ctx context.Context, events *AgentEvents) error {
	s.runs++
	if s.runFn != nil {
		return s.runFn(ctx, events)
	}
	return nil
}

func testSchedulerConfig() *config.Config {
	return &config.Config{
		Schedule:   "0 0 9 * * *",
		Monitoring: config.MonitoringConfig{HealthPort: 0},
	}
}

func TestRunOnceReportsSuccess(t *testing.T) {
	agent := &stubAgent{
		name: "stub",
		runFn: func(ctx context.Context, events *AgentEvents) error {
			events.OnSuccess(stubMetrics{summary: "classified 5 videos"}, time.Second)
			return nil
		},
	}

	s := New(testSchedulerConfig(), agent)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if agent.runs != 1 {
		t.Errorf("agent runs = %d, want 1", agent.runs)
	}
	if !s.monitor.IsHealthy() {
		t.Error("monitor should be healthy after a successful run")
	}
}

func TestRunOncePartialFailureStaysHealthy(t *testing.T) {
	agent := &stubAgent{
		name: "stub",
		runFn: func(ctx context.Context, events *AgentEvents) error {
			events.OnPartialFailure(stubMetrics{summary: "classified 7 of 12"},
				errors.New("1 of 3 batches failed"), time.Second)
			return nil
		},
	}

	s := New(testSchedulerConfig(), agent)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if !s.monitor.IsHealthy() {
		t.Error("partial failure must not flip health status")
	}
}

func TestRunOnceCriticalFailure(t *testing.T) {
	agent := &stubAgent{
		name: "stub",
		runFn: func(ctx context.Context, events *AgentEvents) error {
			return errors.New("api key rejected")
		},
	}

	s := New(testSchedulerConfig(), agent)
	err := s.RunOnce(context.Background())
	if err == nil {
		t.Fatal("RunOnce() error = nil, want run failure")
	}
	if s.monitor.IsHealthy() {
		t.Error("monitor should be unhealthy after a failed run")
	}
}

func TestStartFailsOnBadInitialize(t *testing.T) {
	agent := &stubAgent{name: "stub", initErr: errors.New("no api key")}

	s := New(testSchedulerConfig(), agent)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err == nil {
		t.Fatal("Start() error = nil, want initialization error")
	}
	if agent.runs != 0 {
		t.Errorf("agent ran %d times despite failed initialization", agent.runs)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	agent := &stubAgent{name: "stub"}

	s := New(testSchedulerConfig(), agent)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}
