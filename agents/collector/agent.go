// Package collector gathers raw shorts metadata from the YouTube Data API.
//
// STRICT ROLE: data collection only. The collector never classifies or
// transforms what it gathers; analysis belongs to the analyzer agent.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/TKay76/the-trend-navigator/agents/collector/youtube"
	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/config"
)

// VideoSearcher is the slice of the YouTube client the collector needs.
type VideoSearcher interface {
	SearchShorts(ctx context.Context, query string, maxResults int64, days int) ([]*models.VideoRecord, error)
	QuotaUsed() int
}

// CollectionStats summarizes one collection run.
type CollectionStats struct {
	QueriesRun      int       `json:"queries_run"`
	VideosCollected int       `json:"videos_collected"`
	QuotaUsed       int       `json:"quota_used"`
	LastCollection  time.Time `json:"last_collection"`
}

// GetSummary implements the scheduler Metrics interface.
func (s CollectionStats) GetSummary() string {
	return fmt.Sprintf("ran %d queries, collected %d videos, used %d quota units",
		s.QueriesRun, s.VideosCollected, s.QuotaUsed)
}

type Agent struct {
	client  VideoSearcher
	queries config.QueriesConfig

	mu    sync.Mutex
	stats CollectionStats
}

func New(client VideoSearcher, queries config.QueriesConfig) *Agent {
	return &Agent{client: client, queries: queries}
}

func (a *Agent) Name() string {
	return "Shorts Collector"
}

// CollectTopVideos searches each query, dedups by video id, and keeps the
// union of the top-N performers by views, likes, and comments. A quota
// budget rejection stops further queries but keeps what was collected;
// other per-query errors are logged and skipped.
func (a *Agent) CollectTopVideos(ctx context.Context, queries []string) ([]*models.VideoRecord, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one search query is required")
	}

	log.Printf("Starting collection for %d queries", len(queries))

	var all []*models.VideoRecord
	seen := make(map[string]bool)
	queriesRun := 0

	for i, query := range queries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Query %d/%d: %q", i+1, len(queries), query)

		videos, err := a.client.SearchShorts(ctx, query, int64(a.queries.MaxResultsPerQuery), a.queries.Days)
		queriesRun++
		if err != nil {
			if errors.Is(err, youtube.ErrQuotaExceeded) {
				log.Printf("Quota budget reached, stopping collection: %v", err)
				break
			}
			log.Printf("Warning: query %q failed: %v", query, err)
			continue
		}

		for _, video := range videos {
			if !seen[video.ID] {
				seen[video.ID] = true
				all = append(all, video)
			}
		}
	}

	top := consolidateTop(all, a.queries.TopN)

	a.mu.Lock()
	a.stats = CollectionStats{
		QueriesRun:      queriesRun,
		VideosCollected: len(top),
		QuotaUsed:       a.client.QuotaUsed(),
		LastCollection:  time.Now(),
	}
	a.mu.Unlock()

	log.Printf("Collection complete: %d unique top videos from %d collected", len(top), len(all))
	return top, nil
}

// CollectByCategories derives "<category> shorts" queries and collects them.
func (a *Agent) CollectByCategories(ctx context.Context, categories []string) ([]*models.VideoRecord, error) {
	queries := make([]string, len(categories))
	for i, category := range categories {
		queries[i] = category + " shorts"
	}
	return a.CollectTopVideos(ctx, queries)
}

// Stats returns a snapshot of the most recent collection run.
func (a *Agent) Stats() CollectionStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// consolidateTop keeps the union of the top-N videos by view, like, and
// comment count. Videos without statistics cannot rank.
func consolidateTop(videos []*models.VideoRecord, topN int) []*models.VideoRecord {
	var ranked []*models.VideoRecord
	for _, v := range videos {
		if v.Statistics != nil {
			ranked = append(ranked, v)
		}
	}
	if len(ranked) == 0 || topN <= 0 {
		return nil
	}

	keep := make(map[string]*models.VideoRecord)
	order := make(map[string]int)
	next := 0

	take := func(metric func(*models.VideoRecord) int64) {
		sorted := make([]*models.VideoRecord, len(ranked))
		copy(sorted, ranked)
		sort.SliceStable(sorted, func(i, j int) bool {
			return metric(sorted[i]) > metric(sorted[j])
		})
		limit := topN
		if len(sorted) < limit {
			limit = len(sorted)
		}
		for _, v := range sorted[:limit] {
			if _, ok := keep[v.ID]; !ok {
				keep[v.ID] = v
				order[v.ID] = next
				next++
			}
		}
	}

	take(func(v *models.VideoRecord) int64 { return v.Statistics.ViewCount })
	take(func(v *models.VideoRecord) int64 { return v.Statistics.LikeCount })
	take(func(v *models.VideoRecord) int64 { return v.Statistics.CommentCount })

	out := make([]*models.VideoRecord, 0, len(keep))
	for _, v := range keep {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].ID] < order[out[j].ID] })
	return out
}
