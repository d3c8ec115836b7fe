package retry

import (
	"testing"
	"time"
)

func TestShouldRetrySchedule(t *testing.T) {
	p := DefaultPolicy

	tests := []struct {
		name      string
		attempt   int
		kind      ErrorKind
		wantRetry bool
		wantDelay time.Duration
	}{
		{"RateLimitedFirstAttempt", 0, KindRateLimited, true, 1 * time.Second},
		{"RateLimitedSecondAttempt", 1, KindRateLimited, true, 2 * time.Second},
		{"RateLimitedLastAttempt", 2, KindRateLimited, false, 0},
		{"UnavailableFirstAttempt", 0, KindServiceUnavailable, true, 1 * time.Second},
		{"UnavailableSecondAttempt", 1, KindServiceUnavailable, true, 2 * time.Second},
		{"UnavailableLastAttempt", 2, KindServiceUnavailable, false, 0},
		{"MalformedNeverRetried", 0, KindMalformedResponse, false, 0},
		{"FatalNeverRetried", 0, KindFatal, false, 0},
		{"FatalMidway", 1, KindFatal, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retry, delay := p.ShouldRetry(tt.attempt, tt.kind)
			if retry != tt.wantRetry {
				t.Errorf("ShouldRetry(%d, %v) retry = %v, want %v", tt.attempt, tt.kind, retry, tt.wantRetry)
			}
			if delay != tt.wantDelay {
				t.Errorf("ShouldRetry(%d, %v) delay = %v, want %v", tt.attempt, tt.kind, delay, tt.wantDelay)
			}
		})
	}
}

func TestRetryableKinds(t *testing.T) {
	if !KindRateLimited.Retryable() {
		t.Error("rate limited should be retryable")
	}
	if !KindServiceUnavailable.Retryable() {
		t.Error("service unavailable should be retryable")
	}
	if KindMalformedResponse.Retryable() {
		t.Error("malformed response should not be retryable")
	}
	if KindFatal.Retryable() {
		t.Error("fatal should not be retryable")
	}
}

func TestDelayGrowsExponentially(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseSeconds: 2}

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
	}
	for attempt, expected := range want {
		if got := p.Delay(attempt); got != expected {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestSingleAttemptPolicy(t *testing.T) {
	p := Policy{MaxAttempts: 1, BaseSeconds: 2}
	if retry, _ := p.ShouldRetry(0, KindServiceUnavailable); retry {
		t.Error("single-attempt policy must never retry")
	}
}
