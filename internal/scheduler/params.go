package scheduler

import "time"

// MaxIntervalDays is the hard ceiling on any scheduled interval.
const MaxIntervalDays = 36500

// HardIntervalFactor scales stability down for a HARD rating's interval.
const HardIntervalFactor = 1.2

// MinStability is the floor every stability value is clamped to.
const MinStability = 0.1

// Parameters holds the FSRS v4 configuration. Zero value is not usable;
// construct via DefaultParameters.
type Parameters struct {
	W                     [19]float64
	LearningSteps         []time.Duration
	RelearningSteps       []time.Duration
	GraduatingIntervalDay int // scheduled_days on GOOD graduation from LEARNING
	EasyIntervalDays      int // minimum scheduled_days on an EASY graduation
	MaxIntervalDays       int
	HardIntervalFactor    float64

	// EnableFuzz applies a deterministic perturbation to REVIEW-state
	// intervals of 3 days or more, spreading otherwise-identical due dates
	// across nearby days. Off by default.
	EnableFuzz bool
}

// DefaultParameters returns the FSRS v4 defaults from the reference model:
// learning steps of 1 minute then 10 minutes, a single 10 minute relearning
// step, a 1 day graduating interval and a 4 day minimum easy interval.
func DefaultParameters() Parameters {
	return Parameters{
		W:                     DefaultWeights,
		LearningSteps:         []time.Duration{time.Minute, 10 * time.Minute},
		RelearningSteps:       []time.Duration{10 * time.Minute},
		GraduatingIntervalDay: 1,
		EasyIntervalDays:      4,
		MaxIntervalDays:       MaxIntervalDays,
		HardIntervalFactor:    HardIntervalFactor,
	}
}
