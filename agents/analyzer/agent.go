// Package analyzer drives video classification and trend reporting.
//
// STRICT ROLE: analysis only. The analyzer depends on the remote
// classification capability and never on the collection APIs; raw videos
// are handed to it by the caller.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/ai"
	"github.com/TKay76/the-trend-navigator/shared/config"
)

// Agent classifies collected videos in batches and aggregates the results.
type Agent struct {
	classifier     ai.Classifier
	batchSize      int
	concurrency    int
	singleFallback bool

	mu    sync.Mutex
	stats models.RunStatistics
}

func New(classifier ai.Classifier, cfg *config.AIConfig) *Agent {
	return &Agent{
		classifier:     classifier,
		batchSize:      cfg.BatchSize,
		concurrency:    cfg.Concurrency,
		singleFallback: cfg.SingleFallback,
	}
}

func (a *Agent) Name() string {
	return "Trend Analyzer"
}

// ClassifyVideos partitions videos into contiguous batches and classifies
// each batch, tolerating individual batch failures: a batch that fails after
// exhausted retries is recorded in the run statistics and the run continues.
// The returned slice holds whatever succeeded, concatenated in batch
// submission order regardless of completion order.
//
// Statistics are reset at the start of every run; read them with Stats after
// the call returns to detect partial failure.
func (a *Agent) ClassifyVideos(ctx context.Context, videos []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
	if a.batchSize <= 0 || a.batchSize > config.MaxBatchSize {
		return nil, fmt.Errorf("invalid batch size %d (must be 1-%d)", a.batchSize, config.MaxBatchSize)
	}
	if a.concurrency < 1 {
		return nil, fmt.Errorf("invalid concurrency %d", a.concurrency)
	}

	a.mu.Lock()
	a.stats = models.RunStatistics{Submitted: len(videos)}
	a.mu.Unlock()

	if len(videos) == 0 {
		log.Println("No videos to classify")
		return nil, nil
	}

	batches := partition(videos, a.batchSize)
	a.mu.Lock()
	a.stats.BatchesTotal = len(batches)
	a.mu.Unlock()

	log.Printf("Classifying %d videos in %d batches (batch size %d, %d in flight)",
		len(videos), len(batches), a.batchSize, a.concurrency)

	// Batches are independent; run them with bounded parallelism so one
	// batch sleeping in backoff never blocks the others. Results land in a
	// per-batch slot to keep submission order in the final output.
	perBatch := make([][]models.ClassifiedVideo, len(batches))
	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []*models.VideoRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				log.Printf("Batch %d/%d skipped: %v", i+1, len(batches), ctx.Err())
				a.recordBatchFailure(len(batch))
				return
			}

			perBatch[i] = a.classifyBatch(ctx, i+1, len(batches), batch)
		}(i, batch)
	}
	wg.Wait()

	var classified []models.ClassifiedVideo
	for _, results := range perBatch {
		classified = append(classified, results...)
	}

	a.mu.Lock()
	a.stats.CompletedAt = time.Now()
	stats := a.stats
	a.mu.Unlock()

	log.Printf("Classification complete: %s", stats.GetSummary())
	return classified, nil
}

// classifyBatch runs one batch through the classifier and updates the run
// statistics. Returns the batch's results, or whatever the per-video
// fallback recovered after a batch failure.
func (a *Agent) classifyBatch(ctx context.Context, num, total int, batch []*models.VideoRecord) []models.ClassifiedVideo {
	results, err := a.classifier.ClassifyBatch(ctx, batch)
	if err == nil {
		a.mu.Lock()
		a.stats.Succeeded += len(batch)
		a.mu.Unlock()
		return results
	}

	var cerr *ai.ClassificationError
	if !errors.As(err, &cerr) {
		// Classifier contract violation; treat as a batch failure anyway.
		log.Printf("Warning: batch %d/%d failed with unexpected error type: %v", num, total, err)
	} else {
		log.Printf("Warning: batch %d/%d failed: %v", num, total, err)
	}
	a.recordBatchFailure(len(batch))

	if !a.singleFallback || ctx.Err() != nil {
		return nil
	}

	// Batches are all-or-nothing, but individual re-classification can still
	// rescue videos from a failed batch when enabled.
	log.Printf("Attempting individual classification fallback for batch %d/%d", num, total)
	var recovered []models.ClassifiedVideo
	for _, video := range batch {
		single, err := a.classifier.ClassifyVideo(ctx, video)
		if err != nil {
			log.Printf("Warning: fallback classification failed for video %s: %v", video.ID, err)
			continue
		}
		recovered = append(recovered, *single)
		a.mu.Lock()
		a.stats.Succeeded++
		a.stats.Failed--
		a.mu.Unlock()
	}
	return recovered
}

func (a *Agent) recordBatchFailure(size int) {
	a.mu.Lock()
	a.stats.Failed += size
	a.stats.BatchesFailed++
	a.mu.Unlock()
}

// Stats returns a snapshot of the most recent run's statistics.
func (a *Agent) Stats() models.RunStatistics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// partition slices videos into contiguous batches of at most size items,
// preserving order. The last batch may be smaller.
func partition(videos []*models.VideoRecord, size int) [][]*models.VideoRecord {
	var batches [][]*models.VideoRecord
	for i := 0; i < len(videos); i += size {
		end := i + size
		if end > len(videos) {
			end = len(videos)
		}
		batches = append(batches, videos[i:end])
	}
	return batches
}
