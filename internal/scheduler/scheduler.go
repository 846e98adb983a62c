package scheduler

import (
	"fmt"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// Review applies one rating to a memory state and returns the updated state.
// It is the sole entry point of the Scheduler engine (spec §4.1): pure,
// deterministic, and side-effect free. The caller owns persistence.
func Review(params Parameters, state domain.MemoryState, rating domain.ReviewGrade, now time.Time) (domain.MemoryState, error) {
	if !rating.IsValid() {
		return domain.MemoryState{}, domain.ErrInvalidRating
	}
	switch state.State {
	case domain.CardStateNew:
		return reviewNew(params, state, rating, now), nil
	case domain.CardStateLearning:
		return reviewLearning(params, state, rating, now, false), nil
	case domain.CardStateRelearning:
		return reviewLearning(params, state, rating, now, true), nil
	case domain.CardStateReview:
		return reviewReview(params, state, rating, now), nil
	default:
		return domain.MemoryState{}, fmt.Errorf("scheduler: unknown card state %q", state.State)
	}
}

// reviewNew handles a card's very first review.
func reviewNew(params Parameters, m domain.MemoryState, rating domain.ReviewGrade, now time.Time) domain.MemoryState {
	m.Reps++
	m.LastReview = &now
	m.Stability = InitialStability(params.W, rating)
	m.Difficulty = InitialDifficulty(params.W, rating)

	steps := learningSteps(params, false)

	switch rating {
	case domain.ReviewGradeAgain:
		m.State = domain.CardStateLearning
		m.Step = 0
		m.Lapses++
		m.ScheduledDays = 0
		m.ElapsedDays = 0
		m.Due = now.Add(steps[0])

	case domain.ReviewGradeHard:
		m.State = domain.CardStateLearning
		m.Step = 0
		m.ScheduledDays = 0
		m.ElapsedDays = 0
		m.Due = now.Add(tenMinuteStep(steps))

	case domain.ReviewGradeGood:
		m = graduate(params, m, params.GraduatingIntervalDay, now)

	case domain.ReviewGradeEasy:
		m = graduate(params, m, params.EasyIntervalDays, now)
	}

	return m
}

// reviewLearning handles LEARNING or RELEARNING cards. In this model, any
// rating other than Again graduates the card straight to REVIEW: there is no
// intermediate multi-step queue beyond the single Again-reset step.
func reviewLearning(params Parameters, m domain.MemoryState, rating domain.ReviewGrade, now time.Time, relearning bool) domain.MemoryState {
	m.Reps++
	m.LastReview = &now

	steps := learningSteps(params, relearning)

	switch rating {
	case domain.ReviewGradeAgain:
		m.Step = 0
		m.Lapses++
		m.ScheduledDays = 0
		m.ElapsedDays = 0
		m.Due = now.Add(steps[0])
		return m

	case domain.ReviewGradeHard, domain.ReviewGradeGood:
		if relearning {
			return graduateFromRelearning(params, m, rating, now)
		}
		return graduate(params, m, params.GraduatingIntervalDay, now)

	case domain.ReviewGradeEasy:
		if relearning {
			m = graduateFromRelearning(params, m, rating, now)
			if m.ScheduledDays < params.EasyIntervalDays {
				return graduate(params, m, params.EasyIntervalDays, now)
			}
			return m
		}
		return graduate(params, m, params.EasyIntervalDays, now)
	}

	return m
}

// reviewReview handles a REVIEW card: a rating of Again lapses it into
// RELEARNING; any other rating recomputes stability and difficulty and stays
// in REVIEW.
func reviewReview(params Parameters, m domain.MemoryState, rating domain.ReviewGrade, now time.Time) domain.MemoryState {
	m.Reps++
	m.LastReview = &now

	elapsed := m.ElapsedDays
	if elapsed < 0 {
		elapsed = 0
	}
	r := Retrievability(elapsed, m.Stability)
	preD := m.Difficulty

	if rating == domain.ReviewGradeAgain {
		m.Lapses++
		m.Difficulty = NextDifficulty(params.W, preD, rating)
		m.Stability = StabilityAfterAgain(params.W, m.Stability, preD, r)
		m.State = domain.CardStateRelearning
		m.Step = 0

		steps := params.RelearningSteps
		if len(steps) == 0 {
			steps = []time.Duration{10 * time.Minute}
		}
		m.ScheduledDays = 0
		m.ElapsedDays = 0
		m.Due = now.Add(steps[0])
		return m
	}

	newS := StabilityAfterRecall(params.W, m.Stability, preD, r, rating)
	m.Difficulty = NextDifficulty(params.W, preD, rating)
	m.Stability = newS

	interval := int(newS)
	if rating == domain.ReviewGradeHard {
		interval = int(newS * params.HardIntervalFactor)
	}
	interval = clampInterval(interval, params.MaxIntervalDays)
	if params.EnableFuzz {
		interval = applyFuzz(interval, params.MaxIntervalDays, m.Reps, m.Stability, m.Difficulty)
	}

	m.ScheduledDays = interval
	m.ElapsedDays = 0
	m.Due = now.Add(time.Duration(interval) * 24 * time.Hour)
	return m
}

// graduate transitions a NEW or LEARNING card straight to REVIEW with a
// fixed interval, leaving stability/difficulty as already set by the caller.
func graduate(params Parameters, m domain.MemoryState, intervalDays int, now time.Time) domain.MemoryState {
	intervalDays = clampInterval(intervalDays, params.MaxIntervalDays)
	m.State = domain.CardStateReview
	m.Step = 0
	m.ScheduledDays = intervalDays
	m.ElapsedDays = 0
	m.Due = now.Add(time.Duration(intervalDays) * 24 * time.Hour)
	return m
}

// graduateFromRelearning graduates a RELEARNING card to REVIEW, recomputing
// stability and difficulty via the review formulas rather than reusing a
// fixed interval.
func graduateFromRelearning(params Parameters, m domain.MemoryState, rating domain.ReviewGrade, now time.Time) domain.MemoryState {
	elapsed := m.ElapsedDays
	if elapsed < 0 {
		elapsed = 0
	}
	r := Retrievability(elapsed, m.Stability)
	preD := m.Difficulty

	newS := StabilityAfterRecall(params.W, m.Stability, preD, r, rating)
	newD := NextDifficulty(params.W, preD, rating)

	interval := int(newS)
	if rating == domain.ReviewGradeHard {
		interval = int(newS * params.HardIntervalFactor)
	}
	if interval < 1 {
		interval = 1
	}
	interval = clampInterval(interval, params.MaxIntervalDays)

	m.Stability = newS
	m.Difficulty = newD
	return graduate(params, m, interval, now)
}

func learningSteps(params Parameters, relearning bool) []time.Duration {
	steps := params.LearningSteps
	if relearning {
		steps = params.RelearningSteps
	}
	if len(steps) == 0 {
		steps = []time.Duration{time.Minute}
	}
	return steps
}

func tenMinuteStep(steps []time.Duration) time.Duration {
	if len(steps) > 1 {
		return steps[1]
	}
	return steps[0]
}

func clampInterval(interval, maxDays int) int {
	if interval < 1 {
		return 1
	}
	if interval > maxDays {
		return maxDays
	}
	return interval
}
