// Package retry holds the quota-aware backoff policy used for remote
// classification calls. The policy is pure decision logic: it never sleeps
// and keeps no state, so batches running concurrently can share one value.
package retry

import (
	"math"
	"time"
)

// ErrorKind classifies an upstream failure for retry purposes.
type ErrorKind int

const (
	// KindFatal covers everything that is pointless to retry.
	KindFatal ErrorKind = iota
	// KindRateLimited is a 429-equivalent quota rejection.
	KindRateLimited
	// KindServiceUnavailable is a 503-equivalent transient outage.
	KindServiceUnavailable
	// KindMalformedResponse means the response failed schema validation or
	// item reconciliation. Never retried: resubmitting the same batch would
	// most likely reproduce the same malformed answer.
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindServiceUnavailable:
		return "service unavailable"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "fatal"
	}
}

// Retryable reports whether the kind is worth another attempt.
func (k ErrorKind) Retryable() bool {
	return k == KindRateLimited || k == KindServiceUnavailable
}

// Policy decides retry-or-fail for a batch attempt.
//
// With the defaults (3 attempts, base 2) a batch makes attempts 0, 1, 2 and
// sleeps base^attempt seconds between them: 2^0=1s after attempt 0, then
// 2^1=2s after attempt 1.
type Policy struct {
	MaxAttempts int
	BaseSeconds int
}

// DefaultPolicy matches the configuration defaults.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseSeconds: 2}

// ShouldRetry returns whether the batch should be retried after the given
// attempt (0-based) failed with kind, and how long to wait before retrying.
func (p Policy) ShouldRetry(attempt int, kind ErrorKind) (bool, time.Duration) {
	if !kind.Retryable() {
		return false, 0
	}
	if attempt >= p.MaxAttempts-1 {
		return false, 0
	}
	return true, p.Delay(attempt)
}

// Delay returns the backoff delay after the given attempt failed.
func (p Policy) Delay(attempt int) time.Duration {
	base := float64(p.BaseSeconds)
	if base <= 1 {
		base = 2
	}
	seconds := math.Pow(base, float64(attempt))
	return time.Duration(seconds * float64(time.Second))
}
