package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/TKay76/the-trend-navigator/internal/models"
)

// GenerateTrendReport builds the per-category trend report for the given
// classified videos. Pass an empty category to report on the dominant one.
func (a *Agent) GenerateTrendReport(classified []models.ClassifiedVideo, category models.Category) *models.TrendReport {
	videos := classified
	if category != "" {
		videos = filterByCategory(classified, category)
	}

	if len(videos) == 0 {
		target := category
		if target == "" {
			target = models.CategoryChallenge
		}
		return &models.TrendReport{
			Category:           target,
			TrendSummary:       "No videos found for analysis",
			KeyInsights:        []string{"No data available for trend analysis"},
			RecommendedActions: []string{"Collect more videos for this category"},
			AnalysisPeriod:     "Current session",
			GeneratedAt:        time.Now(),
		}
	}

	target := category
	if target == "" {
		target = dominantCategory(videos)
	}
	categoryVideos := filterByCategory(videos, target)

	return &models.TrendReport{
		Category:            target,
		TrendSummary:        trendSummary(target, categoryVideos),
		KeyInsights:         categoryTrendInsights(categoryVideos),
		RecommendedActions:  recommendations(target, categoryVideos),
		TopVideos:           topVideos(categoryVideos, 5),
		TotalVideosAnalyzed: len(categoryVideos),
		AnalysisPeriod:      "Current session",
		GeneratedAt:         time.Now(),
	}
}

// GenerateComprehensiveAnalysis builds cross-category insights for a whole
// classified set.
func (a *Agent) GenerateComprehensiveAnalysis(classified []models.ClassifiedVideo) *models.TrendAnalysis {
	var insights []models.CategoryInsights
	for _, category := range presentCategories(classified) {
		videos := filterByCategory(classified, category)
		insights = append(insights, categoryInsights(category, videos))
	}

	modelVersion := ""
	if a.classifier != nil {
		modelVersion = a.classifier.ModelInfo()
	}

	return &models.TrendAnalysis{
		AnalysisPeriod:      "Current session",
		TotalVideosAnalyzed: len(classified),
		CategoryInsights:    insights,
		DominantCategory:    dominantCategory(classified),
		EmergingTrends:      emergingTrends(classified),
		ContentStrategy:     contentStrategy(classified),
		ModelVersion:        modelVersion,
		AnalyzedAt:          time.Now(),
	}
}

// RenderMarkdown renders a trend report for file output or email delivery.
func RenderMarkdown(report *models.TrendReport, stats models.RunStatistics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Trend Report: %s\n\n", report.Category)
	fmt.Fprintf(&b, "_Generated %s — %s_\n\n", report.GeneratedAt.Format("2006-01-02 15:04"), report.AnalysisPeriod)
	fmt.Fprintf(&b, "%s\n\n", report.TrendSummary)

	b.WriteString("## Key Insights\n\n")
	for _, insight := range report.KeyInsights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}

	b.WriteString("\n## Recommended Actions\n\n")
	for _, action := range report.RecommendedActions {
		fmt.Fprintf(&b, "- %s\n", action)
	}

	if len(report.TopVideos) > 0 {
		b.WriteString("\n## Top Videos\n\n")
		for i, v := range report.TopVideos {
			fmt.Fprintf(&b, "%d. **%s** — %s (%.0f%% confidence", i+1, v.Title, v.ChannelTitle, v.Confidence*100)
			if v.ViewCount > 0 {
				fmt.Fprintf(&b, ", %d views", v.ViewCount)
			}
			b.WriteString(")\n")
			if v.Reasoning != "" {
				fmt.Fprintf(&b, "   - %s\n", v.Reasoning)
			}
		}
	}

	fmt.Fprintf(&b, "\n---\n\nRun statistics: %s\n", stats.GetSummary())
	return b.String()
}

func filterByCategory(videos []models.ClassifiedVideo, category models.Category) []models.ClassifiedVideo {
	var out []models.ClassifiedVideo
	for _, v := range videos {
		if v.Category == category {
			out = append(out, v)
		}
	}
	return out
}

// presentCategories returns known categories first, then any unknown
// categories that showed up, each once, in stable order.
func presentCategories(videos []models.ClassifiedVideo) []models.Category {
	seen := make(map[models.Category]bool)
	var out []models.Category
	for _, c := range models.KnownCategories {
		seen[c] = true
		out = append(out, c)
	}
	var unknown []models.Category
	for _, v := range videos {
		if !seen[v.Category] {
			seen[v.Category] = true
			unknown = append(unknown, v.Category)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	out = append(out, unknown...)

	var present []models.Category
	for _, c := range out {
		if len(filterByCategory(videos, c)) > 0 {
			present = append(present, c)
		}
	}
	return present
}

func dominantCategory(videos []models.ClassifiedVideo) models.Category {
	if len(videos) == 0 {
		return models.CategoryChallenge
	}
	counts := make(map[models.Category]int)
	for _, v := range videos {
		counts[v.Category]++
	}
	best := videos[0].Category
	for category, count := range counts {
		if count > counts[best] || (count == counts[best] && category < best) {
			best = category
		}
	}
	return best
}

func averageConfidence(videos []models.ClassifiedVideo) float64 {
	if len(videos) == 0 {
		return 0
	}
	var sum float64
	for _, v := range videos {
		sum += v.Confidence
	}
	return sum / float64(len(videos))
}

func categoryTrendInsights(videos []models.ClassifiedVideo) []string {
	if len(videos) == 0 {
		return []string{"No videos to analyze"}
	}

	insights := []string{
		fmt.Sprintf("Average classification confidence: %.0f%%", averageConfidence(videos)*100),
	}

	withViews := videosWithViews(videos)
	if len(withViews) > 0 {
		avg := averageViews(withViews)
		insights = append(insights, fmt.Sprintf("Average views: %.0f", avg))

		high := 0
		for _, v := range withViews {
			if float64(v.ViewCount) > avg*1.5 {
				high++
			}
		}
		if high > 0 {
			insights = append(insights, fmt.Sprintf("%d high-performing videos (>50%% above average)", high))
		}
	}

	if keywords := extractCommonKeywords(titles(videos)); len(keywords) > 0 {
		limit := 5
		if len(keywords) < limit {
			limit = len(keywords)
		}
		insights = append(insights, "Common keywords: "+strings.Join(keywords[:limit], ", "))
	}

	return insights
}

func recommendations(category models.Category, videos []models.ClassifiedVideo) []string {
	var recs []string

	switch category {
	case models.CategoryChallenge:
		recs = append(recs,
			"Focus on viral dance challenges and fitness routines",
			"Create content that encourages user participation",
			"Use trending music and hashtags for maximum reach")
	case models.CategoryInfoAdvice:
		recs = append(recs,
			"Provide clear, actionable tips in short format",
			"Use eye-catching titles that promise value",
			"Include quick demonstrations or visual examples")
	case models.CategoryTrendingSounds:
		recs = append(recs,
			"Stay updated with trending audio clips",
			"Create content that showcases musical talent",
			"Experiment with popular sound effects and remixes")
	default:
		recs = append(recs, fmt.Sprintf("Review %s content manually; no playbook exists for this category yet", category))
	}

	highConfidence := 0
	for _, v := range videos {
		if v.Confidence > 0.8 {
			highConfidence++
		}
	}
	if highConfidence > 0 {
		recs = append(recs, fmt.Sprintf("Replicate patterns from %d clearly categorized videos", highConfidence))
	}

	return recs
}

// topVideos sorts by view count then confidence, descending.
func topVideos(videos []models.ClassifiedVideo, limit int) []models.ClassifiedVideo {
	sorted := make([]models.ClassifiedVideo, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ViewCount != sorted[j].ViewCount {
			return sorted[i].ViewCount > sorted[j].ViewCount
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func trendSummary(category models.Category, videos []models.ClassifiedVideo) string {
	if len(videos) == 0 {
		return "No trend data available"
	}

	summary := fmt.Sprintf("Analysis of %d %s videos with %.0f%% average confidence. ",
		len(videos), category, averageConfidence(videos)*100)

	switch category {
	case models.CategoryChallenge:
		summary += "Challenge content shows strong engagement potential with viral elements."
	case models.CategoryInfoAdvice:
		summary += "Educational content demonstrates consistent value delivery patterns."
	case models.CategoryTrendingSounds:
		summary += "Music-focused content shows audio-driven engagement trends."
	default:
		summary += "Emerging category; monitor for sustained growth."
	}
	return summary
}

func categoryInsights(category models.Category, videos []models.ClassifiedVideo) models.CategoryInsights {
	insights := models.CategoryInsights{
		Category:          category,
		VideoCount:        len(videos),
		AverageConfidence: averageConfidence(videos),
		CommonKeywords:    extractCommonKeywords(titles(videos)),
		TrendingThemes:    identifyThemes(category, titles(videos)),
	}
	if withViews := videosWithViews(videos); len(withViews) > 0 {
		insights.AverageViews = averageViews(withViews)
	}
	if len(insights.CommonKeywords) > 10 {
		insights.CommonKeywords = insights.CommonKeywords[:10]
	}
	return insights
}

var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "they": true,
	"your": true, "will": true, "have": true,
}

// extractCommonKeywords returns the most frequent words (longer than three
// characters, stop words removed) across the given titles, most common first.
func extractCommonKeywords(texts []string) []string {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, ".,!?#:;\"'()")
			if len(word) > 3 && !stopWords[word] {
				counts[word]++
			}
		}
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > 10 {
		words = words[:10]
	}
	return words
}

func identifyThemes(category models.Category, titles []string) []string {
	var candidates []string
	switch category {
	case models.CategoryChallenge:
		candidates = []string{"dance", "fitness", "viral", "workout", "trend"}
	case models.CategoryInfoAdvice:
		candidates = []string{"tips", "how", "tutorial", "guide", "learn"}
	case models.CategoryTrendingSounds:
		candidates = []string{"music", "song", "sound", "audio", "remix"}
	}

	var themes []string
	for _, theme := range candidates {
		for _, title := range titles {
			if strings.Contains(strings.ToLower(title), theme) {
				themes = append(themes, theme)
				break
			}
		}
	}
	if len(themes) > 5 {
		themes = themes[:5]
	}
	return themes
}

var trendIndicators = []string{"new", "viral", "trending", "popular", "latest"}

func emergingTrends(videos []models.ClassifiedVideo) []string {
	keywords := extractCommonKeywords(titles(videos))
	limit := 5
	if len(keywords) < limit {
		limit = len(keywords)
	}

	var trends []string
	for _, keyword := range keywords[:limit] {
		for _, indicator := range trendIndicators {
			if strings.Contains(keyword, indicator) {
				trends = append(trends, "Growing interest in "+keyword)
				break
			}
		}
	}
	if len(trends) == 0 {
		trends = []string{"Short-form content continues to drive engagement"}
	}
	return trends
}

func contentStrategy(videos []models.ClassifiedVideo) []string {
	var strategies []string

	total := len(videos)
	if total > 0 {
		for _, category := range presentCategories(videos) {
			count := len(filterByCategory(videos, category))
			percentage := float64(count) / float64(total) * 100
			if percentage > 40 {
				strategies = append(strategies, fmt.Sprintf("Focus heavily on %s content (%.0f%% of current trends)", category, percentage))
			} else if percentage > 20 {
				strategies = append(strategies, fmt.Sprintf("Include %s content in your strategy (%.0f%% representation)", category, percentage))
			}
		}
	}

	strategies = append(strategies,
		"Maintain consistent posting schedule for shorts",
		"Engage with trending hashtags and sounds",
		"Monitor performance metrics for optimization")
	return strategies
}

func titles(videos []models.ClassifiedVideo) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.Title
	}
	return out
}

func videosWithViews(videos []models.ClassifiedVideo) []models.ClassifiedVideo {
	var out []models.ClassifiedVideo
	for _, v := range videos {
		if v.ViewCount > 0 {
			out = append(out, v)
		}
	}
	return out
}

func averageViews(videos []models.ClassifiedVideo) float64 {
	if len(videos) == 0 {
		return 0
	}
	var sum int64
	for _, v := range videos {
		sum += v.ViewCount
	}
	return float64(sum) / float64(len(videos))
}
