package config

import (
	"github.com/heartmarshall/myenglish-backend/internal/placement"
	"github.com/heartmarshall/myenglish-backend/internal/scheduler"
)

// ToParameters builds the Scheduler's engine parameters from config. Validate
// must have run first so LearningSteps/RelearningSteps are populated; the
// embedded FSRS v4 weight vector itself is not configurable (spec §4.1: "the
// reference FSRS v4 defaults must be embedded verbatim").
func (c SchedulerConfig) ToParameters() scheduler.Parameters {
	return scheduler.Parameters{
		W:                     scheduler.DefaultWeights,
		LearningSteps:         c.LearningSteps,
		RelearningSteps:       c.RelearningSteps,
		GraduatingIntervalDay: c.GraduatingIntervalDay,
		EasyIntervalDays:      c.EasyIntervalDays,
		MaxIntervalDays:       c.MaxIntervalDays,
		HardIntervalFactor:    c.HardIntervalFactor,
		EnableFuzz:            c.EnableFuzz,
	}
}

// ToParameters builds the Placement Engine's CAT parameters from config.
func (c PlacementConfig) ToParameters() placement.Parameters {
	return placement.Parameters{
		InitialTheta:   0,
		InitialSE:      c.InitialSE,
		TargetSE:       c.TargetSE,
		MinItems:       c.MinItems,
		MaxItems:       c.MaxItems,
		Discrimination: c.Discrimination,
		ThetaMin:       c.ThetaMin,
		ThetaMax:       c.ThetaMax,
		SEFloor:        c.SEFloor,
	}
}
