// Package pipeline composes collection, classification, reporting, storage
// and delivery into one schedulable run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/TKay76/the-trend-navigator/agents/analyzer"
	"github.com/TKay76/the-trend-navigator/agents/collector"
	"github.com/TKay76/the-trend-navigator/agents/collector/youtube"
	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/ai"
	"github.com/TKay76/the-trend-navigator/shared/config"
	"github.com/TKay76/the-trend-navigator/shared/email"
	"github.com/TKay76/the-trend-navigator/shared/scheduler"
	"github.com/TKay76/the-trend-navigator/shared/storage"
)

// Metrics summarizes one pipeline run.
type Metrics struct {
	Collection     collector.CollectionStats
	Classification models.RunStatistics
	SkippedKnown   int
}

func (m *Metrics) GetSummary() string {
	return fmt.Sprintf("%s; skipped %d known; %s",
		m.Collection.GetSummary(), m.SkippedKnown, m.Classification.GetSummary())
}

// Agent implements the scheduler.Agent interface for the trend pipeline.
type Agent struct {
	config    *config.Config
	collector *collector.Agent
	analyzer  *analyzer.Agent
	sender    *email.Sender
	store     *storage.Store
}

func NewAgent(cfg *config.Config) *Agent {
	return &Agent{
		config: cfg,
	}
}

func (a *Agent) Name() string {
	return "Trend Navigator"
}

func (a *Agent) Initialize() error {
	log.Printf("Initializing %s...", a.Name())

	if a.collector == nil {
		client, err := youtube.NewClient(&a.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		a.collector = collector.New(client, a.config.Queries)
		log.Println("Shorts collector initialized")
	}

	if a.analyzer == nil {
		classifier, err := ai.NewGeminiClassifier(a.config)
		if err != nil {
			return fmt.Errorf("failed to create classifier: %w", err)
		}
		a.analyzer = analyzer.New(classifier, &a.config.AI)
		log.Println("Trend analyzer initialized")
	}

	if a.sender == nil {
		a.sender = email.NewSender(&a.config.Email)
		log.Println("Email sender initialized")
	}

	if a.store == nil {
		store, err := storage.Open(a.config.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open trend store: %w", err)
		}
		a.store = store
		count, err := store.CountClassified(context.Background())
		if err == nil {
			log.Printf("Trend store initialized (%d videos classified)", count)
		}
	}

	return nil
}

// Close releases the agent's storage resources.
func (a *Agent) Close() error {
	return a.store.Close()
}

func (a *Agent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	metrics := &Metrics{}

	log.Println("Collecting top shorts...")
	videos, err := a.collector.CollectByCategories(ctx, a.config.Queries.Categories)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}
	metrics.Collection = a.collector.Stats()

	if len(videos) == 0 {
		log.Println("No videos collected")
		a.reportSuccess(events, metrics, time.Since(startTime))
		return nil
	}

	// Skip videos classified in a previous run
	fresh, err := a.store.FilterUnclassified(ctx, videos)
	if err != nil {
		return fmt.Errorf("failed to filter classified videos: %w", err)
	}
	metrics.SkippedKnown = len(videos) - len(fresh)
	log.Printf("Found %d videos (%d new, %d already classified)", len(videos), len(fresh), metrics.SkippedKnown)

	if len(fresh) == 0 {
		log.Println("No new videos to classify")
		a.reportSuccess(events, metrics, time.Since(startTime))
		return nil
	}

	classified, err := a.analyzer.ClassifyVideos(ctx, fresh)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	stats := a.analyzer.Stats()
	metrics.Classification = stats

	if stats.Submitted > 0 && stats.Succeeded == 0 {
		if err := a.store.SaveRun(ctx, stats); err != nil {
			log.Printf("Warning: failed to persist run statistics: %v", err)
		}
		return fmt.Errorf("all %d batches failed, no videos classified", stats.BatchesTotal)
	}

	if err := a.store.SaveClassifications(ctx, classified); err != nil {
		log.Printf("Warning: failed to persist classifications: %v", err)
	}
	if err := a.store.SaveRun(ctx, stats); err != nil {
		log.Printf("Warning: failed to persist run statistics: %v", err)
	}

	if len(classified) > 0 {
		report := a.analyzer.GenerateTrendReport(classified, "")
		if err := a.sender.SendTrendReport(report); err != nil {
			return fmt.Errorf("failed to send trend report: %w", err)
		}
		if a.config.Email.Enabled {
			log.Println("Trend report sent successfully")
		}
	} else {
		log.Println("No videos classified, skipping report")
	}

	duration := time.Since(startTime)
	if stats.PartialFailure() {
		if events != nil && events.OnPartialFailure != nil {
			events.OnPartialFailure(metrics,
				fmt.Errorf("%d of %d batches failed", stats.BatchesFailed, stats.BatchesTotal), duration)
		}
	} else {
		a.reportSuccess(events, metrics, duration)
	}

	log.Printf("Run complete: %s", metrics.GetSummary())
	return nil
}

func (a *Agent) reportSuccess(events *scheduler.AgentEvents, metrics *Metrics, duration time.Duration) {
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, duration)
	}
}
