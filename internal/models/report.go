package models

import (
	"fmt"
	"time"
)

// RunStatistics tracks batch-level accounting for one classification run.
// A whole batch failing counts all of its members as failed. Counters are
// owned by the analyzer and reset per run.
type RunStatistics struct {
	Submitted     int       `json:"submitted"`
	Succeeded     int       `json:"succeeded"`
	Failed        int       `json:"failed"`
	BatchesTotal  int       `json:"batches_total"`
	BatchesFailed int       `json:"batches_failed"`
	CompletedAt   time.Time `json:"completed_at"`
}

// GetSummary implements the scheduler Metrics interface.
func (s RunStatistics) GetSummary() string {
	return fmt.Sprintf("submitted %d videos, classified %d, failed %d (%d/%d batches ok)",
		s.Submitted, s.Succeeded, s.Failed, s.BatchesTotal-s.BatchesFailed, s.BatchesTotal)
}

// PartialFailure reports whether some, but not all, videos failed.
func (s RunStatistics) PartialFailure() bool {
	return s.Failed > 0 && s.Succeeded > 0
}

// CategoryInsights summarizes classification results for one category.
type CategoryInsights struct {
	Category          Category `json:"category"`
	VideoCount        int      `json:"video_count"`
	AverageConfidence float64  `json:"average_confidence"`
	AverageViews      float64  `json:"average_views,omitempty"`
	CommonKeywords    []string `json:"common_keywords,omitempty"`
	TrendingThemes    []string `json:"trending_themes,omitempty"`
}

// TrendReport is the per-category trend analysis handed to the report stage.
type TrendReport struct {
	Category            Category          `json:"category"`
	TrendSummary        string            `json:"trend_summary"`
	KeyInsights         []string          `json:"key_insights"`
	RecommendedActions  []string          `json:"recommended_actions"`
	TopVideos           []ClassifiedVideo `json:"top_videos"`
	TotalVideosAnalyzed int               `json:"total_videos_analyzed"`
	AnalysisPeriod      string            `json:"analysis_period"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// TrendAnalysis is the comprehensive cross-category result.
type TrendAnalysis struct {
	AnalysisPeriod      string             `json:"analysis_period"`
	TotalVideosAnalyzed int                `json:"total_videos_analyzed"`
	CategoryInsights    []CategoryInsights `json:"category_insights"`
	DominantCategory    Category           `json:"dominant_category"`
	EmergingTrends      []string           `json:"emerging_trends"`
	ContentStrategy     []string           `json:"content_strategy"`
	ModelVersion        string             `json:"model_version"`
	AnalyzedAt          time.Time          `json:"analyzed_at"`
}
