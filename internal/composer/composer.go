// Package composer implements the Session Composer (spec §4.4): given
// pre-fetched candidate pools (the storage adapter's job, not this
// package's), rank and band-filter them into a review batch of up to N
// items. Pure; the only non-determinism is the injected randomization of
// the NEW and overflow tiers, which callers can pin in tests via rng.
package composer

import (
	"math/rand"
	"sort"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// DueCandidate pairs an item with the due timestamp of its memory state, for
// the REVIEW/RELEARNING and LEARNING tiers.
type DueCandidate struct {
	Item domain.Item
	Due  time.Time
}

// Input is the full candidate set a caller has already fetched from storage
// for one compose call.
type Input struct {
	CEFR     domain.CEFR
	Count    int
	Due      []DueCandidate // state REVIEW or RELEARNING
	Learning []DueCandidate // state LEARNING
	New      []domain.Item  // no memory state for this learner
	Overflow []domain.Item  // any other item; Compose does not filter it by language
}

// Breakdown reports how many items each tier contributed.
type Breakdown struct {
	Due      int
	Learning int
	New      int
	Total    int
}

// Band is the inclusive [lo, hi] θ_item window items must fall in to count
// toward priority tiers 1-3.
type Band struct {
	Lo float64
	Hi float64
}

// Result is the composed batch.
type Result struct {
	Items     []domain.Item
	Breakdown Breakdown
	Band      Band
}

// Compose produces up to input.Count items, filling tiers in priority
// order: due REVIEW/RELEARNING (by due ascending), LEARNING (by due
// ascending), NEW (randomized), then overflow (randomized). A partially
// filled or entirely empty result is valid (spec: "the learner has caught up
// and there is nothing in band" is not an error).
func Compose(input Input, rng *rand.Rand) Result {
	target := input.CEFR.Theta()
	band := Band{Lo: target - 1, Hi: target + 1}

	items := make([]domain.Item, 0, input.Count)
	chosen := map[string]bool{}
	breakdown := Breakdown{}

	due := inBandDue(input.Due, band)
	sortByDueAsc(due)
	for _, c := range due {
		if len(items) >= input.Count {
			break
		}
		items = append(items, c.Item)
		chosen[c.Item.ID] = true
		breakdown.Due++
	}

	learning := inBandDue(input.Learning, band)
	sortByDueAsc(learning)
	for _, c := range learning {
		if len(items) >= input.Count {
			break
		}
		if chosen[c.Item.ID] {
			continue
		}
		items = append(items, c.Item)
		chosen[c.Item.ID] = true
		breakdown.Learning++
	}

	newItems := inBandItems(input.New, band)
	shuffleItems(newItems, rng)
	for _, it := range newItems {
		if len(items) >= input.Count {
			break
		}
		if chosen[it.ID] {
			continue
		}
		items = append(items, it)
		chosen[it.ID] = true
		breakdown.New++
	}

	overflow := make([]domain.Item, len(input.Overflow))
	copy(overflow, input.Overflow)
	shuffleItems(overflow, rng)
	for _, it := range overflow {
		if len(items) >= input.Count {
			break
		}
		if chosen[it.ID] {
			continue
		}
		items = append(items, it)
		chosen[it.ID] = true
	}

	breakdown.Total = len(items)

	return Result{Items: items, Breakdown: breakdown, Band: band}
}

func inBandDue(pool []DueCandidate, band Band) []DueCandidate {
	out := make([]DueCandidate, 0, len(pool))
	for _, c := range pool {
		if inBand(c.Item, band) {
			out = append(out, c)
		}
	}
	return out
}

func inBandItems(pool []domain.Item, band Band) []domain.Item {
	out := make([]domain.Item, 0, len(pool))
	for _, it := range pool {
		if inBand(it, band) {
			out = append(out, it)
		}
	}
	return out
}

func inBand(item domain.Item, band Band) bool {
	if !item.Payload.HasTheta {
		return false
	}
	theta := item.Payload.ThetaItem
	return theta >= band.Lo && theta <= band.Hi
}

func sortByDueAsc(pool []DueCandidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Due.Before(pool[j].Due)
	})
}

func shuffleItems(items []domain.Item, rng *rand.Rand) {
	if rng == nil {
		return
	}
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
