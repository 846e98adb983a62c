package review

import (
	"context"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/composer"
)

// streakLookbackDays bounds how far back ReviewDaysSince looks when
// computing a streak; 365 days covers any realistic streak without an
// unbounded table scan, matching the teacher's own GetStreakDays(... , 365).
const streakLookbackDays = 365

// Dashboard summarizes a learner's queue composition and review streak
// (SPEC_FULL.md §12, adapted from the teacher's own GetDashboard). Fetches
// the counts internal/composer.BuildDashboard needs, then hands them to the
// pure aggregation.
func (s *Service) Dashboard(ctx context.Context, userKey string) (composer.Dashboard, error) {
	now := s.clock.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	streakSince := dayStart.AddDate(0, 0, -streakLookbackDays)

	dueCount, err := s.dashboard.CountDue(ctx, userKey, now)
	if err != nil {
		return composer.Dashboard{}, err
	}
	newCount, err := s.dashboard.CountNew(ctx, userKey)
	if err != nil {
		return composer.Dashboard{}, err
	}
	reviewedToday, err := s.dashboard.CountReviewsSince(ctx, userKey, dayStart)
	if err != nil {
		return composer.Dashboard{}, err
	}
	statusCounts, err := s.dashboard.CountMemoryByState(ctx, userKey)
	if err != nil {
		return composer.Dashboard{}, err
	}
	reviewDays, err := s.dashboard.ReviewDaysSince(ctx, userKey, streakSince)
	if err != nil {
		return composer.Dashboard{}, err
	}
	ratingCounts, err := s.dashboard.RatingCounts(ctx, userKey, streakSince)
	if err != nil {
		return composer.Dashboard{}, err
	}

	dash := composer.BuildDashboard(composer.DashboardInput{
		DueCount:      dueCount,
		NewCount:      newCount,
		ReviewedToday: reviewedToday,
		StatusCounts:  statusCounts,
		ReviewDays:    reviewDays,
		RatingCounts:  ratingCounts,
		Now:           now,
	})

	s.logger.InfoContext(ctx, "dashboard loaded",
		"user_key", userKey, "due_count", dueCount, "new_count", newCount, "streak", dash.Streak)

	return dash, nil
}
