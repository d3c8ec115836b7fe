package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TKay76/the-trend-navigator/shared/retry"

	"google.golang.org/genai"
)

// ClassificationError is the batch-level failure signal: it carries the ids
// of every video in the failed batch and the upstream cause. The analyzer
// catches it, counts the whole batch as failed, and moves on.
type ClassificationError struct {
	VideoIDs []string
	Attempts int
	Kind     retry.ErrorKind
	Err      error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed for %d videos after %d attempt(s) (%s): %v",
		len(e.VideoIDs), e.Attempts, e.Kind, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// ErrMalformedResponse marks responses that failed schema validation or
// item reconciliation.
var ErrMalformedResponse = errors.New("malformed classification response")

// classifyUpstreamError maps an error from the remote model call to a retry
// kind. Status codes are preferred; the string checks cover transports that
// only surface text.
func classifyUpstreamError(err error) retry.ErrorKind {
	if err == nil {
		return retry.KindFatal
	}
	if errors.Is(err, ErrMalformedResponse) {
		return retry.KindMalformedResponse
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return retry.KindRateLimited
		case 503:
			return retry.KindServiceUnavailable
		}
		return retry.KindFatal
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "rate limit"):
		return retry.KindRateLimited
	case strings.Contains(msg, "503"), strings.Contains(msg, "UNAVAILABLE"), strings.Contains(msg, "overloaded"):
		return retry.KindServiceUnavailable
	}
	return retry.KindFatal
}
