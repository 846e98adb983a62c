package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/scheduler"
)

func init() {
	fsrsCmd.AddCommand(fsrsSimulateCmd)
	fsrsSimulateCmd.Flags().StringP("file", "f", "", "JSON review log to replay (required)")
	fsrsSimulateCmd.MarkFlagRequired("file") //nolint:errcheck
	rootCmd.AddCommand(fsrsCmd)
}

var fsrsCmd = &cobra.Command{
	Use:   "fsrs",
	Short: "Replay a recorded review log through the FSRS v4 scheduler",
}

// reviewLogEntry is one line of a recorded review log, in chronological
// order. Rating is one of AGAIN, HARD, GOOD, EASY.
type reviewLogEntry struct {
	Rating         string    `json:"rating"`
	ReviewedAt     time.Time `json:"reviewed_at"`
	ResponseTimeMs int       `json:"response_time_ms"`
}

var fsrsSimulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a review log and print the memory state after each review",
	RunE:  runFsrsSimulate,
}

func runFsrsSimulate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read review log: %w", err)
	}

	var entries []reviewLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse review log: %w", err)
	}

	params := scheduler.DefaultParameters()
	state := domain.NewMemoryState("corectl", "replayed-item")

	for i, entry := range entries {
		grade, err := parseRating(entry.Rating)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		// Recompute the elapsed gap from the recorded timestamps: the
		// scheduler always stores ElapsedDays=0 after a transition, so the
		// replay must derive it from consecutive ReviewedAt values itself,
		// the same way the live review path derives it from LastReview.
		if state.LastReview != nil {
			elapsed := entry.ReviewedAt.Sub(*state.LastReview)
			state.ElapsedDays = max(0, int(elapsed.Hours()/24))
		}

		state, err = scheduler.Review(params, state, grade, entry.ReviewedAt)
		if err != nil {
			return fmt.Errorf("entry %d: scheduler review: %w", i, err)
		}

		fmt.Printf("step=%d rating=%-5s state=%-10s stability=%.3f difficulty=%.3f interval_days=%d due=%s\n",
			i, entry.Rating, state.State, state.Stability, state.Difficulty, state.ScheduledDays,
			state.Due.Format(time.RFC3339))
	}

	return nil
}

func parseRating(s string) (domain.ReviewGrade, error) {
	switch s {
	case "AGAIN":
		return domain.ReviewGradeAgain, nil
	case "HARD":
		return domain.ReviewGradeHard, nil
	case "GOOD":
		return domain.ReviewGradeGood, nil
	case "EASY":
		return domain.ReviewGradeEasy, nil
	default:
		return 0, fmt.Errorf("unknown rating %q (want AGAIN, HARD, GOOD, or EASY)", s)
	}
}
