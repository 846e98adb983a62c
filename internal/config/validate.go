package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks field invariants and parses the raw step-duration strings.
// It must run once after load, before the config is handed to app wiring.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port out of range: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database.dsn is required")
	}

	if err := c.Scheduler.validate(); err != nil {
		return fmt.Errorf("config: scheduler: %w", err)
	}
	if err := c.Placement.validate(); err != nil {
		return fmt.Errorf("config: placement: %w", err)
	}
	if c.Composer.DefaultBatchSize <= 0 {
		return fmt.Errorf("config: composer.default_batch_size must be positive")
	}
	return nil
}

func (s *SchedulerConfig) validate() error {
	steps, err := ParseDurationList(s.LearningStepsRaw)
	if err != nil {
		return fmt.Errorf("learning_steps: %w", err)
	}
	s.LearningSteps = steps

	relearning, err := ParseDurationList(s.RelearningStepsRaw)
	if err != nil {
		return fmt.Errorf("relearning_steps: %w", err)
	}
	s.RelearningSteps = relearning

	if s.GraduatingIntervalDay <= 0 {
		return fmt.Errorf("graduating_interval_day must be positive")
	}
	if s.EasyIntervalDays <= s.GraduatingIntervalDay {
		return fmt.Errorf("easy_interval_days must exceed graduating_interval_day")
	}
	if s.MaxIntervalDays <= 0 {
		return fmt.Errorf("max_interval_days must be positive")
	}
	if s.HardIntervalFactor <= 1.0 {
		return fmt.Errorf("hard_interval_factor must be greater than 1.0")
	}
	return nil
}

func (p *PlacementConfig) validate() error {
	if p.MinItems <= 0 || p.MaxItems < p.MinItems {
		return fmt.Errorf("min_items/max_items invalid: min=%d max=%d", p.MinItems, p.MaxItems)
	}
	if p.TargetSE <= 0 || p.InitialSE <= p.TargetSE {
		return fmt.Errorf("target_se/initial_se invalid: initial=%f target=%f", p.InitialSE, p.TargetSE)
	}
	if p.ThetaMax <= p.ThetaMin {
		return fmt.Errorf("theta_max must exceed theta_min")
	}
	if p.Discrimination <= 0 {
		return fmt.Errorf("discrimination must be positive")
	}
	return nil
}

// ParseDurationList parses a comma-separated list of duration literals, e.g.
// "1m,10m", into a slice. Empty elements (from leading/trailing/doubled
// commas) are rejected rather than silently skipped.
func ParseDurationList(raw string) ([]time.Duration, error) {
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty duration element in %q", raw)
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", p, err)
		}
		out = append(out, d)
	}
	return out, nil
}
