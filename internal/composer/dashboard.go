package composer

import (
	"sort"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// DashboardInput is the pre-aggregated data one Dashboard call needs — every
// count is the caller's (internal/review's) responsibility to fetch from
// storage, matching this package's existing "storage does the fetching,
// composer does the arithmetic" split.
type DashboardInput struct {
	DueCount      int
	NewCount      int
	ReviewedToday int
	StatusCounts  map[domain.CardState]int
	// ReviewDays is the set of calendar dates (normalized to midnight, in
	// whatever timezone the caller chose) on which the learner completed at
	// least one review, most recent first.
	ReviewDays []time.Time
	// RatingCounts is how many review log entries carried each grade, over
	// whatever window the caller chose (e.g. since the streak lookback).
	// Used only to compute Accuracy; an empty map yields accuracy 0.
	RatingCounts map[domain.ReviewGrade]int
	Now          time.Time
}

// Dashboard summarizes a learner's current queue composition and review
// streak. Pure: the streak calculation never sees a clock or a database,
// only the dates the caller already fetched.
type Dashboard struct {
	DueCount      int
	NewCount      int
	ReviewedToday int
	Streak        int
	// Accuracy is the fraction of GOOD/EASY ratings among all rated reviews
	// in the window RatingCounts was computed over, in [0, 1]. Zero when no
	// reviews fall in that window.
	Accuracy     float64
	StatusCounts map[domain.CardState]int
}

// BuildDashboard computes a Dashboard from pre-fetched counts.
func BuildDashboard(in DashboardInput) Dashboard {
	return Dashboard{
		DueCount:      in.DueCount,
		NewCount:      in.NewCount,
		ReviewedToday: in.ReviewedToday,
		Streak:        streakFromDays(in.ReviewDays, in.Now),
		Accuracy:      accuracyFromRatings(in.RatingCounts),
		StatusCounts:  in.StatusCounts,
	}
}

// accuracyFromRatings is the share of GOOD/EASY ratings among every graded
// review counted, matching the teacher's own accuracy definition.
func accuracyFromRatings(counts map[domain.ReviewGrade]int) float64 {
	var total, correct int
	for grade, n := range counts {
		total += n
		if grade == domain.ReviewGradeGood || grade == domain.ReviewGradeEasy {
			correct += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// streakFromDays counts consecutive calendar days with at least one review,
// walking backward from today (or yesterday, if today has none yet so an
// in-progress day doesn't reset the streak before it's over). days need not
// be sorted; a defensive copy is sorted descending here.
func streakFromDays(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	sorted := make([]time.Time, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	sameDay := func(a, b time.Time) bool {
		return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	expected := today
	if !sameDay(sorted[0], today) {
		expected = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range sorted {
		if sameDay(d, expected) {
			streak++
			expected = expected.AddDate(0, 0, -1)
			continue
		}
		break
	}
	return streak
}
