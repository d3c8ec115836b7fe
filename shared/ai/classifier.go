package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/config"
	"github.com/TKay76/the-trend-navigator/shared/retry"

	"google.golang.org/genai"
)

// Classifier is the remote classification capability the analyzer depends on.
// It is deliberately the only upstream the analyzer knows about: collection
// stays with the collector agent.
type Classifier interface {
	// ClassifyBatch classifies one batch in a single remote call. The batch
	// is all-or-nothing: either every video gets a result, in submission
	// order, or the call fails with a *ClassificationError.
	ClassifyBatch(ctx context.Context, videos []*models.VideoRecord) ([]models.ClassifiedVideo, error)

	// ClassifyVideo classifies a single video. Used as the per-video
	// fallback after a batch has failed.
	ClassifyVideo(ctx context.Context, video *models.VideoRecord) (*models.ClassifiedVideo, error)

	// ModelInfo identifies the backing model, for report metadata.
	ModelInfo() string
}

// GeminiClassifier implements Classifier on the Gemini API.
type GeminiClassifier struct {
	client            *genai.Client
	model             string
	policy            retry.Policy
	maxBatchSize      int
	descriptionLength int

	// generate issues the raw model call. Swapped out in tests.
	generate func(ctx context.Context, prompt string) (string, error)
}

func NewGeminiClassifier(cfg *config.Config) (*GeminiClassifier, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.AI.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GeminiClassifier{
		client:            client,
		model:             cfg.AI.Model,
		policy:            retry.Policy{MaxAttempts: cfg.AI.MaxAttempts, BaseSeconds: cfg.AI.BackoffBaseSeconds},
		maxBatchSize:      config.MaxBatchSize,
		descriptionLength: cfg.AI.DescriptionLength,
	}
	c.generate = c.generateContent

	return c, nil
}

func (c *GeminiClassifier) ModelInfo() string {
	return "gemini/" + c.model
}

func (c *GeminiClassifier) generateContent(ctx context.Context, prompt string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", err
	}

	responseText := result.Text()
	if responseText == "" {
		return "", fmt.Errorf("%w: empty response from model", ErrMalformedResponse)
	}
	return responseText, nil
}

// ClassifyBatch sends one classification request for the whole batch and
// retries transient upstream failures per the backoff policy. The retry
// sleep is context-aware and never blocks other in-flight batches.
func (c *GeminiClassifier) ClassifyBatch(ctx context.Context, videos []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
	if len(videos) == 0 {
		return nil, fmt.Errorf("batch must contain at least one video")
	}
	if len(videos) > c.maxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds maximum %d", len(videos), c.maxBatchSize)
	}

	prompt := c.buildBatchPrompt(videos)
	ids := videoIDs(videos)

	var lastErr error
	attempts := 0
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		attempts = attempt + 1

		response, err := c.generate(ctx, prompt)
		if err == nil {
			results, parseErr := parseBatchResponse(response, videos)
			if parseErr == nil {
				return results, nil
			}
			// Parse failures are terminal: resubmitting the same batch
			// would most likely reproduce the same malformed answer.
			return nil, &ClassificationError{
				VideoIDs: ids,
				Attempts: attempts,
				Kind:     retry.KindMalformedResponse,
				Err:      parseErr,
			}
		}

		lastErr = err
		kind := classifyUpstreamError(err)
		shouldRetry, delay := c.policy.ShouldRetry(attempt, kind)
		if !shouldRetry {
			return nil, &ClassificationError{
				VideoIDs: ids,
				Attempts: attempts,
				Kind:     kind,
				Err:      err,
			}
		}

		log.Printf("Batch of %d failed on attempt %d (%s), retrying in %v", len(videos), attempt+1, kind, delay)
		if err := sleepContext(ctx, delay); err != nil {
			return nil, &ClassificationError{
				VideoIDs: ids,
				Attempts: attempts,
				Kind:     kind,
				Err:      err,
			}
		}
	}

	return nil, &ClassificationError{
		VideoIDs: ids,
		Attempts: attempts,
		Kind:     classifyUpstreamError(lastErr),
		Err:      lastErr,
	}
}

// ClassifyVideo classifies a single video through the same prompt and retry
// machinery, as a batch of one.
func (c *GeminiClassifier) ClassifyVideo(ctx context.Context, video *models.VideoRecord) (*models.ClassifiedVideo, error) {
	if video == nil {
		return nil, fmt.Errorf("video cannot be nil")
	}

	results, err := c.ClassifyBatch(ctx, []*models.VideoRecord{video})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (c *GeminiClassifier) buildBatchPrompt(videos []*models.VideoRecord) string {
	var b strings.Builder

	b.WriteString(`You are an expert YouTube Shorts content classifier. Classify each video below into exactly one category.

CATEGORIES:
1. Challenge - Dance challenges, fitness challenges, viral challenges, trending activities
2. Info/Advice - Educational content, tutorials, tips, how-to videos
3. Trending Sounds/BGM - Music-focused content, sound trends, song covers, audio-centric videos

VIDEOS:
`)

	for i, v := range videos {
		fmt.Fprintf(&b, "%d. id: %s\n   Title: %s\n   Channel: %s\n   Description: %s\n",
			i+1, v.ID, v.Title, v.ChannelTitle, truncateString(v.Description, c.descriptionLength))
	}

	fmt.Fprintf(&b, `
Respond with ONLY a JSON array containing exactly %d entries, one per video, keyed by the video id given above:
[
  {"video_id": "<id>", "category": "Challenge" | "Info/Advice" | "Trending Sounds/BGM", "confidence": <number 0.0-1.0>, "reasoning": "<one or two sentences>"}
]
Every id must appear exactly once. Use confidence above 0.8 only for clear cases.`, len(videos))

	return b.String()
}

type batchResponseItem struct {
	VideoID    string  `json:"video_id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// parseBatchResponse validates the model output against the submitted batch.
// Every submitted id must appear exactly once; missing, unknown, or duplicate
// ids fail the whole batch. Results come back in submission order.
func parseBatchResponse(response string, videos []*models.VideoRecord) ([]models.ClassifiedVideo, error) {
	startIdx := strings.Index(response, "[")
	endIdx := strings.LastIndex(response, "]")
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("%w: no JSON array found in response", ErrMalformedResponse)
	}

	var items []batchResponseItem
	if err := json.Unmarshal([]byte(response[startIdx:endIdx+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(items) != len(videos) {
		return nil, fmt.Errorf("%w: expected %d results, got %d", ErrMalformedResponse, len(videos), len(items))
	}

	byID := make(map[string]*models.VideoRecord, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	seen := make(map[string]bool, len(items))
	resultByID := make(map[string]models.ClassifiedVideo, len(items))
	for _, item := range items {
		video, ok := byID[item.VideoID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown video id %q", ErrMalformedResponse, item.VideoID)
		}
		if seen[item.VideoID] {
			return nil, fmt.Errorf("%w: duplicate result for video id %q", ErrMalformedResponse, item.VideoID)
		}
		seen[item.VideoID] = true

		if item.Confidence < 0 || item.Confidence > 1 {
			return nil, fmt.Errorf("%w: confidence %v out of range for video %q", ErrMalformedResponse, item.Confidence, item.VideoID)
		}
		if item.Category == "" {
			return nil, fmt.Errorf("%w: empty category for video %q", ErrMalformedResponse, item.VideoID)
		}

		classified := models.ClassifiedVideo{
			VideoID:      video.ID,
			Title:        video.Title,
			Category:     models.Category(item.Category),
			Confidence:   item.Confidence,
			Reasoning:    item.Reasoning,
			ChannelTitle: video.ChannelTitle,
			PublishedAt:  video.PublishedAt,
		}
		if video.Statistics != nil {
			classified.ViewCount = video.Statistics.ViewCount
		}
		resultByID[video.ID] = classified
	}

	results := make([]models.ClassifiedVideo, 0, len(videos))
	for _, v := range videos {
		results = append(results, resultByID[v.ID])
	}
	return results, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}

func videoIDs(videos []*models.VideoRecord) []string {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}
