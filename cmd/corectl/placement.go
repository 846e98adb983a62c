package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/placement"
)

func init() {
	placementCmd.AddCommand(placementSimulateCmd)
	placementSimulateCmd.Flags().StringP("file", "f", "", "JSON placement transcript to replay (required)")
	placementSimulateCmd.MarkFlagRequired("file") //nolint:errcheck
	rootCmd.AddCommand(placementCmd)
}

var placementCmd = &cobra.Command{
	Use:   "placement",
	Short: "Replay a recorded placement transcript through the CAT engine",
}

// placementTranscript is an item pool plus the ratings a learner gave, in
// the order they were administered.
type placementTranscript struct {
	Items []struct {
		ID        string  `json:"id"`
		ThetaItem float64 `json:"theta_item"`
	} `json:"items"`
	Answers []struct {
		ItemID string `json:"item_id"`
		Rating string `json:"rating"`
	} `json:"answers"`
}

var placementSimulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a placement transcript and print theta/SE after each answer",
	RunE:  runPlacementSimulate,
}

func runPlacementSimulate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	var transcript placementTranscript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return fmt.Errorf("parse transcript: %w", err)
	}

	items := make(map[string]domain.Item, len(transcript.Items))
	for _, it := range transcript.Items {
		items[it.ID] = domain.Item{
			ID: it.ID,
			Payload: domain.ItemPayload{
				ThetaItem: it.ThetaItem,
				HasTheta:  true,
			},
		}
	}

	params := placement.DefaultParameters()
	session := placement.NewSession("corectl-session", "corectl", "en", nil, params, time.Now())

	for i, ans := range transcript.Answers {
		item, ok := items[ans.ItemID]
		if !ok {
			return fmt.Errorf("answer %d: unknown item %q", i, ans.ItemID)
		}

		rating, err := parseRating(ans.Rating)
		if err != nil {
			return fmt.Errorf("answer %d: %w", i, err)
		}

		poolEmptyAfter := i == len(transcript.Answers)-1
		session, err = placement.ApplyAnswer(params, session, item, rating, time.Now(), poolEmptyAfter)
		if err != nil {
			return fmt.Errorf("answer %d: apply: %w", i, err)
		}

		fmt.Printf("step=%d item=%-10s rating=%-5s theta=%.3f se=%.3f complete=%v\n",
			i, ans.ItemID, ans.Rating, session.Theta, session.SE, session.Complete)

		if session.Complete {
			fmt.Printf("final_cefr=%s final_theta=%.3f items_completed=%d\n",
				session.FinalCEFR, session.Theta, session.ItemsCompleted)
			break
		}
	}

	return nil
}
