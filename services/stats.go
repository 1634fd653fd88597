package services

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/BetterNetworks-web/interview-preview/models"
)

// focusAreaThreshold marks a dimension as a focus area when its
// current-month average sits below this score.
const focusAreaThreshold = 60.0

// DashboardStats aggregates a user's saved scorecards for the dashboard.
// Streak and trend fields are populated for pro users only.
type DashboardStats struct {
	Total           int                       `json:"total"`
	BestScore       int                       `json:"best_score"`
	StreakDays      int                       `json:"streak_days"`
	DimensionTrends map[string]DimensionTrend `json:"dimension_trends,omitempty"`
	FocusAreas      []string                  `json:"focus_areas,omitempty"`
}

// DimensionTrend compares a dimension's average score between the current
// and previous calendar month.
type DimensionTrend struct {
	CurrentMonth  float64 `json:"current_month"`
	PreviousMonth float64 `json:"previous_month"`
	Delta         float64 `json:"delta"`
}

// BuildDashboardStats computes all dashboard aggregates from an
// already-fetched scorecard list. Pure array reduction, no I/O.
func BuildDashboardStats(scorecards []models.Scorecard, now time.Time, pro bool) *DashboardStats {
	stats := &DashboardStats{
		Total:     len(scorecards),
		BestScore: BestScore(scorecards),
	}

	if !pro {
		return stats
	}

	createdAt := make([]time.Time, 0, len(scorecards))
	for _, sc := range scorecards {
		createdAt = append(createdAt, sc.CreatedAt)
	}
	stats.StreakDays = StreakDays(createdAt, now)
	stats.DimensionTrends = DimensionTrends(scorecards, now)
	stats.FocusAreas = FocusAreas(stats.DimensionTrends)

	return stats
}

// BestScore returns the highest overall score, or 0 for an empty history.
func BestScore(scorecards []models.Scorecard) int {
	best := 0
	for _, sc := range scorecards {
		if sc.OverallScore > best {
			best = sc.OverallScore
		}
	}
	return best
}

// StreakDays counts consecutive calendar days with at least one scorecard,
// ending today. A day without a scorecard today yields 0; any earlier gap
// cuts the streak to the unbroken suffix.
func StreakDays(createdAt []time.Time, now time.Time) int {
	seen := make(map[time.Time]bool, len(createdAt))
	for _, t := range createdAt {
		seen[truncateToDay(t.In(now.Location()))] = true
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 0
	today := truncateToDay(now)
	for i, d := range days {
		expected := today.AddDate(0, 0, -i)
		if !d.Equal(expected) {
			break
		}
		streak++
	}
	return streak
}

// DimensionTrends averages each evaluation axis over the current and
// previous calendar month. Scorecards whose dimensions blob cannot be
// decoded are skipped.
func DimensionTrends(scorecards []models.Scorecard, now time.Time) map[string]DimensionTrend {
	type bucket struct {
		sum   float64
		count int
	}
	current := make(map[string]*bucket)
	previous := make(map[string]*bucket)

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previousMonth := currentMonth.AddDate(0, -1, 0)

	add := (func(m map[string]*bucket, dims *models.Dimensions) {
		for name, score := range dimensionScores(dims) {
			b := m[name]
			if b == nil {
				b = &bucket{}
				m[name] = b
			}
			b.sum += float64(score)
			b.count++
		}
	})

	for _, sc := range scorecards {
		var dims models.Dimensions
		if len(sc.Dimensions) == 0 || json.Unmarshal(sc.Dimensions, &dims) != nil {
			continue
		}

		created := sc.CreatedAt.In(now.Location())
		switch {
		case !created.Before(currentMonth):
			add(current, &dims)
		case !created.Before(previousMonth):
			add(previous, &dims)
		}
	}

	trends := make(map[string]DimensionTrend)
	for _, name := range dimensionNames() {
		var trend DimensionTrend
		if b := current[name]; b != nil {
			trend.CurrentMonth = round1(b.sum / float64(b.count))
		}
		if b := previous[name]; b != nil {
			trend.PreviousMonth = round1(b.sum / float64(b.count))
		}
		trend.Delta = round1(trend.CurrentMonth - trend.PreviousMonth)
		trends[name] = trend
	}
	return trends
}

// FocusAreas flags dimensions averaging below the threshold this month,
// worst first. Dimensions with no scorecards this month are not flagged.
func FocusAreas(trends map[string]DimensionTrend) []string {
	var areas []string
	for name, trend := range trends {
		if trend.CurrentMonth > 0 && trend.CurrentMonth < focusAreaThreshold {
			areas = append(areas, name)
		}
	}
	sort.Slice(areas, func(i, j int) bool {
		if trends[areas[i]].CurrentMonth != trends[areas[j]].CurrentMonth {
			return trends[areas[i]].CurrentMonth < trends[areas[j]].CurrentMonth
		}
		return areas[i] < areas[j]
	})
	return areas
}

func dimensionNames() []string {
	return []string{"evidence_specificity", "handling_pressure", "self_awareness", "strategic_thinking"}
}

func dimensionScores(dims *models.Dimensions) map[string]int {
	return map[string]int{
		"evidence_specificity": dims.EvidenceSpecificity.Score,
		"handling_pressure":    dims.HandlingPressure.Score,
		"self_awareness":       dims.SelfAwareness.Score,
		"strategic_thinking":   dims.StrategicThinking.Score,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
