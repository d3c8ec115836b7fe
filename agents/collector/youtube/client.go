// Package youtube wraps the YouTube Data API for shorts collection, with
// quota accounting and request pacing.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/config"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// API quota costs per call, per the YouTube Data API pricing table.
const (
	searchQuotaCost = 100
	listQuotaCost   = 1
)

// Videos longer than this are not shorts even when the search API says so:
// videoDuration=short matches anything up to 4 minutes.
const maxShortSeconds = 60

// ErrQuotaExceeded signals that a call would exceed the configured daily
// quota budget. Collection stops cleanly instead of burning the remainder.
var ErrQuotaExceeded = errors.New("youtube api daily quota budget exceeded")

type Client struct {
	service    *youtube.Service
	limiter    *rate.Limiter
	regionCode string
	maxQuota   int

	mu        sync.Mutex
	quotaUsed int
}

func NewClient(cfg *config.YouTubeConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	ctx := context.Background()
	service, err := youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service:    service,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), 1),
		regionCode: cfg.RegionCode,
		maxQuota:   cfg.MaxDailyQuota,
	}, nil
}

// QuotaUsed returns the quota units consumed by this client so far.
func (c *Client) QuotaUsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotaUsed
}

// reserveQuota charges cost against the budget, or fails without charging
// when the call would exceed it.
func (c *Client) reserveQuota(cost int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quotaUsed+cost > c.maxQuota {
		return fmt.Errorf("%w: used %d of %d, call costs %d", ErrQuotaExceeded, c.quotaUsed, c.maxQuota, cost)
	}
	c.quotaUsed += cost
	return nil
}

// SearchShorts finds shorts for a query published within the last days days,
// ordered by view count, with full snippet and statistics detail.
func (c *Client) SearchShorts(ctx context.Context, query string, maxResults int64, days int) ([]*models.VideoRecord, error) {
	log.Printf("Searching for shorts: %q (max %d)", query, maxResults)

	if err := c.reserveQuota(searchQuotaCost); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if maxResults > 50 {
		maxResults = 50 // API limit
	}
	publishedAfter := time.Now().AddDate(0, 0, -days).Format(time.RFC3339)

	searchCall := c.service.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(query).
		Type("video").
		VideoDuration("short").
		MaxResults(maxResults).
		RegionCode(c.regionCode).
		Order("viewCount").
		PublishedAfter(publishedAfter)

	searchResponse, err := searchCall.Do()
	if err != nil {
		return nil, fmt.Errorf("search failed for query %q: %w", query, err)
	}

	var videoIDs []string
	for _, item := range searchResponse.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			videoIDs = append(videoIDs, item.Id.VideoId)
		}
	}
	if len(videoIDs) == 0 {
		log.Printf("No videos found for query %q", query)
		return nil, nil
	}

	videos, err := c.GetVideoDetails(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	shorts := filterShorts(videos)
	log.Printf("Found %d shorts out of %d videos for query %q", len(shorts), len(videos), query)
	return shorts, nil
}

// GetVideoDetails fetches snippet, duration, and statistics for the given
// video ids, batching up to 50 ids per call.
func (c *Client) GetVideoDetails(ctx context.Context, videoIDs []string) ([]*models.VideoRecord, error) {
	var allVideos []*models.VideoRecord
	batchSize := 50

	for i := 0; i < len(videoIDs); i += batchSize {
		end := i + batchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		if err := c.reserveQuota(listQuotaCost); err != nil {
			return allVideos, err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return allVideos, err
		}

		videosCall := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Context(ctx).
			Id(strings.Join(videoIDs[i:end], ","))

		videosResponse, err := videosCall.Do()
		if err != nil {
			log.Printf("Failed to get video details for batch: %v", err)
			continue
		}

		for _, item := range videosResponse.Items {
			allVideos = append(allVideos, videoFromItem(item))
		}
	}

	return allVideos, nil
}

func videoFromItem(item *youtube.Video) *models.VideoRecord {
	video := &models.VideoRecord{
		ID:  item.Id,
		URL: fmt.Sprintf("https://www.youtube.com/shorts/%s", item.Id),
	}

	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description
		video.ChannelTitle = item.Snippet.ChannelTitle
		if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			video.PublishedAt = publishedAt
		}
	}

	if item.ContentDetails != nil {
		video.Duration = item.ContentDetails.Duration
		video.DurationSeconds = parseDurationSeconds(item.ContentDetails.Duration)
	}

	if item.Statistics != nil {
		video.Statistics = &models.VideoStatistics{
			ViewCount:    int64(item.Statistics.ViewCount),
			LikeCount:    int64(item.Statistics.LikeCount),
			CommentCount: int64(item.Statistics.CommentCount),
		}
	}

	return video
}

// filterShorts keeps videos of at most maxShortSeconds. Videos with no
// parseable duration are kept; better to include than exclude.
func filterShorts(videos []*models.VideoRecord) []*models.VideoRecord {
	var shorts []*models.VideoRecord
	for _, v := range videos {
		if v.DurationSeconds == 0 || v.DurationSeconds <= maxShortSeconds {
			shorts = append(shorts, v)
		}
	}
	return shorts
}

var durationRe = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	// Parse ISO 8601 duration format (e.g., "PT1M30S", "PT45S", "PT2H15M30S")
	matches := durationRe.FindStringSubmatch(duration)
	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int
	if matches[1] != "" {
		if hours, err := strconv.Atoi(matches[1]); err == nil {
			totalSeconds += hours * 3600
		}
	}
	if matches[2] != "" {
		if minutes, err := strconv.Atoi(matches[2]); err == nil {
			totalSeconds += minutes * 60
		}
	}
	if matches[3] != "" {
		if seconds, err := strconv.Atoi(matches[3]); err == nil {
			totalSeconds += seconds
		}
	}

	return totalSeconds
}
