package models

import "time"

// Category is the AI classification bucket for a short. It is an open string
// type: values outside the known set are preserved as-is so new categories
// can be introduced without a schema change.
type Category string

const (
	CategoryChallenge      Category = "Challenge"
	CategoryInfoAdvice     Category = "Info/Advice"
	CategoryTrendingSounds Category = "Trending Sounds/BGM"
)

// KnownCategories lists the categories the classifier is prompted with,
// in report order.
var KnownCategories = []Category{
	CategoryChallenge,
	CategoryInfoAdvice,
	CategoryTrendingSounds,
}

// Known reports whether c is one of the prompted categories.
func (c Category) Known() bool {
	for _, k := range KnownCategories {
		if c == k {
			return true
		}
	}
	return false
}

type VideoStatistics struct {
	ViewCount    int64 `json:"view_count"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
}

// VideoRecord is the raw video metadata handed over by the collector.
// Records are read-only once collected; the analyzer never mutates them.
type VideoRecord struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ChannelTitle    string           `json:"channel_title"`
	PublishedAt     time.Time        `json:"published_at"`
	Duration        string           `json:"duration"`
	DurationSeconds int              `json:"duration_seconds"`
	URL             string           `json:"url"`
	Statistics      *VideoStatistics `json:"statistics,omitempty"`
}

// ClassifiedVideo is one video with its AI classification attached.
type ClassifiedVideo struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Category     Category  `json:"category"`
	Confidence   float64   `json:"confidence"` // 0.0-1.0
	Reasoning    string    `json:"reasoning"`
	ChannelTitle string    `json:"channel_title,omitempty"`
	ViewCount    int64     `json:"view_count,omitempty"`
	PublishedAt  time.Time `json:"published_at,omitempty"`
}
