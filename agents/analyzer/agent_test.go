package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/ai"
	"github.com/TKay76/the-trend-navigator/shared/config"
	"github.com/TKay76/the-trend-navigator/shared/retry"
)

type fakeClassifier struct {
	mu         sync.Mutex
	batchCalls int
	batchFn    func(call int, videos []*models.VideoRecord) ([]models.ClassifiedVideo, error)
	singleFn   func(video *models.VideoRecord) (*models.ClassifiedVideo, error)
}

func (f *fakeClassifier) ClassifyBatch(ctx context.Context, videos []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
	f.mu.Lock()
	f.batchCalls++
	call := f.batchCalls
	f.mu.Unlock()
	return f.batchFn(call, videos)
}

func (f *fakeClassifier) ClassifyVideo(ctx context.Context, video *models.VideoRecord) (*models.ClassifiedVideo, error) {
	if f.singleFn == nil {
		return nil, errors.New("single classification unavailable")
	}
	return f.singleFn(video)
}

func (f *fakeClassifier) ModelInfo() string { return "fake/test" }

func classifySuccessfully(videos []*models.VideoRecord) []models.ClassifiedVideo {
	out := make([]models.ClassifiedVideo, len(videos))
	for i, v := range videos {
		out[i] = models.ClassifiedVideo{
			VideoID:    v.ID,
			Title:      v.Title,
			Category:   models.CategoryChallenge,
			Confidence: 0.9,
			Reasoning:  "test",
		}
	}
	return out
}

func makeVideos(n int) []*models.VideoRecord {
	videos := make([]*models.VideoRecord, n)
	for i := range videos {
		videos[i] = &models.VideoRecord{
			ID:    fmt.Sprintf("video-%02d", i),
			Title: fmt.Sprintf("Video %d", i),
		}
	}
	return videos
}

func newTestAgent(classifier ai.Classifier, batchSize, concurrency int) *Agent {
	return New(classifier, &config.AIConfig{
		BatchSize:   batchSize,
		Concurrency: concurrency,
	})
}

func batchError(videos []*models.VideoRecord, kind retry.ErrorKind) *ai.ClassificationError {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return &ai.ClassificationError{VideoIDs: ids, Attempts: 3, Kind: kind, Err: errors.New("simulated failure")}
}

func TestClassifyVideosAllSucceed(t *testing.T) {
	videos := makeVideos(12)
	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			return classifySuccessfully(batch), nil
		},
	}
	agent := newTestAgent(fc, 5, 1)

	results, err := agent.ClassifyVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("ClassifyVideos() error = %v", err)
	}
	if len(results) != 12 {
		t.Errorf("got %d results, want 12", len(results))
	}
	if fc.batchCalls != 3 {
		t.Errorf("made %d batch calls, want 3 (sizes 5,5,2)", fc.batchCalls)
	}

	stats := agent.Stats()
	if stats.Submitted != 12 || stats.Succeeded != 12 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 12 submitted, 12 succeeded, 0 failed", stats)
	}
	if stats.Succeeded+stats.Failed != stats.Submitted {
		t.Error("succeeded + failed must equal submitted")
	}
	for i, r := range results {
		if r.VideoID != videos[i].ID {
			t.Errorf("result %d = %s, want %s (batch order)", i, r.VideoID, videos[i].ID)
		}
	}
}

func TestClassifyVideosMiddleBatchFails(t *testing.T) {
	// 12 videos with batch size 5 partition into [5,5,2]. The second batch
	// exhausts retries on a simulated outage; the run must still finish with
	// the other 7 classified.
	videos := makeVideos(12)
	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			if batch[0].ID == "video-05" {
				return nil, batchError(batch, retry.KindServiceUnavailable)
			}
			return classifySuccessfully(batch), nil
		},
	}
	agent := newTestAgent(fc, 5, 1)

	results, err := agent.ClassifyVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("ClassifyVideos() error = %v, one failed batch must not abort the run", err)
	}
	if len(results) != 7 {
		t.Errorf("got %d results, want 7", len(results))
	}

	stats := agent.Stats()
	if stats.Submitted != 12 || stats.Succeeded != 7 || stats.Failed != 5 {
		t.Errorf("stats = submitted %d succeeded %d failed %d, want 12/7/5",
			stats.Submitted, stats.Succeeded, stats.Failed)
	}
	if stats.BatchesTotal != 3 || stats.BatchesFailed != 1 {
		t.Errorf("batches = %d total %d failed, want 3/1", stats.BatchesTotal, stats.BatchesFailed)
	}
	if !stats.PartialFailure() {
		t.Error("expected partial failure to be reported")
	}

	// Results from batches 1 and 3, still in batch order.
	wantIDs := append([]string{}, "video-00", "video-01", "video-02", "video-03", "video-04", "video-10", "video-11")
	for i, r := range results {
		if r.VideoID != wantIDs[i] {
			t.Errorf("result %d = %s, want %s", i, r.VideoID, wantIDs[i])
		}
	}
}

func TestClassifyVideosFirstBatchFailureDoesNotBlockRest(t *testing.T) {
	videos := makeVideos(6)
	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			if batch[0].ID == "video-00" {
				return nil, batchError(batch, retry.KindRateLimited)
			}
			return classifySuccessfully(batch), nil
		},
	}
	agent := newTestAgent(fc, 3, 1)

	results, err := agent.ClassifyVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("ClassifyVideos() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3 from the surviving batch", len(results))
	}
	if fc.batchCalls != 2 {
		t.Errorf("made %d batch calls, want 2", fc.batchCalls)
	}
}

func TestClassifyVideosParallelPreservesBatchOrder(t *testing.T) {
	videos := makeVideos(9)
	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			// Earlier batches finish later: completion order is reversed.
			switch batch[0].ID {
			case "video-00":
				time.Sleep(120 * time.Millisecond)
			case "video-03":
				time.Sleep(60 * time.Millisecond)
			}
			return classifySuccessfully(batch), nil
		},
	}
	agent := newTestAgent(fc, 3, 3)

	results, err := agent.ClassifyVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("ClassifyVideos() error = %v", err)
	}
	if len(results) != 9 {
		t.Fatalf("got %d results, want 9", len(results))
	}
	for i, r := range results {
		if r.VideoID != videos[i].ID {
			t.Errorf("result %d = %s, want %s (submission order must survive parallel completion)", i, r.VideoID, videos[i].ID)
		}
	}
}

func TestClassifyVideosEmptyInput(t *testing.T) {
	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			t.Fatal("classifier should not be called for empty input")
			return nil, nil
		},
	}
	agent := newTestAgent(fc, 5, 1)

	results, err := agent.ClassifyVideos(context.Background(), nil)
	if err != nil {
		t.Fatalf("ClassifyVideos() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if stats := agent.Stats(); stats.Submitted != 0 {
		t.Errorf("submitted = %d, want 0", stats.Submitted)
	}
}

func TestClassifyVideosInvalidBatchSize(t *testing.T) {
	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			return classifySuccessfully(batch), nil
		},
	}

	for _, size := range []int{0, -1, config.MaxBatchSize + 1} {
		agent := newTestAgent(fc, size, 1)
		if _, err := agent.ClassifyVideos(context.Background(), makeVideos(3)); err == nil {
			t.Errorf("batch size %d accepted, want configuration error", size)
		}
	}
}

func TestClassifyVideosSingleFallbackRecovers(t *testing.T) {
	videos := makeVideos(4)
	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			return nil, batchError(batch, retry.KindServiceUnavailable)
		},
		singleFn: func(video *models.VideoRecord) (*models.ClassifiedVideo, error) {
			if video.ID == "video-02" {
				return nil, batchError([]*models.VideoRecord{video}, retry.KindFatal)
			}
			return &models.ClassifiedVideo{
				VideoID:    video.ID,
				Title:      video.Title,
				Category:   models.CategoryInfoAdvice,
				Confidence: 0.7,
			}, nil
		},
	}
	agent := New(fc, &config.AIConfig{BatchSize: 4, Concurrency: 1, SingleFallback: true})

	results, err := agent.ClassifyVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("ClassifyVideos() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3 recovered by fallback", len(results))
	}

	stats := agent.Stats()
	if stats.Succeeded != 3 || stats.Failed != 1 {
		t.Errorf("stats = succeeded %d failed %d, want 3/1 after fallback", stats.Succeeded, stats.Failed)
	}
	if stats.Succeeded+stats.Failed != stats.Submitted {
		t.Error("succeeded + failed must equal submitted")
	}
}

func TestClassifyVideosCancelledContext(t *testing.T) {
	videos := makeVideos(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeClassifier{
		batchFn: func(call int, batch []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
			t.Error("no batch should be dispatched after cancellation")
			return nil, ctx.Err()
		},
	}
	agent := newTestAgent(fc, 5, 1)

	results, err := agent.ClassifyVideos(ctx, videos)
	if err != nil {
		t.Fatalf("ClassifyVideos() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 (no fabricated partial results)", len(results))
	}
	if stats := agent.Stats(); stats.Failed != 10 {
		t.Errorf("failed = %d, want 10", stats.Failed)
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		size      int
		wantSizes []int
	}{
		{"EvenSplit", 10, 5, []int{5, 5}},
		{"ShortLastBatch", 12, 5, []int{5, 5, 2}},
		{"SingleBatch", 3, 5, []int{3}},
		{"BatchOfOne", 4, 1, []int{1, 1, 1, 1}},
		{"Empty", 0, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := partition(makeVideos(tt.n), tt.size)
			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.wantSizes))
			}
			next := 0
			for i, batch := range batches {
				if len(batch) != tt.wantSizes[i] {
					t.Errorf("batch %d size = %d, want %d", i, len(batch), tt.wantSizes[i])
				}
				for _, v := range batch {
					if v.ID != fmt.Sprintf("video-%02d", next) {
						t.Errorf("batch %d out of order: got %s", i, v.ID)
					}
					next++
				}
			}
		})
	}
}

func TestRunStatisticsSummary(t *testing.T) {
	stats := models.RunStatistics{Submitted: 12, Succeeded: 7, Failed: 5, BatchesTotal: 3, BatchesFailed: 1}
	want := "submitted 12 videos, classified 7, failed 5 (2/3 batches ok)"
	if got := stats.GetSummary(); got != want {
		t.Errorf("GetSummary() = %q, want %q", got, want)
	}
}
