package scheduler

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
)

// fuzzRange is one tier of the 3-tier fuzz system.
type fuzzRange struct {
	Start  float64
	End    float64
	Factor float64
}

// fuzzRanges matches the go-fsrs reference 3-tier fuzz.
var fuzzRanges = []fuzzRange{
	{Start: 2.5, End: 7.0, Factor: 0.15},
	{Start: 7.0, End: 20.0, Factor: 0.10},
	{Start: 20.0, End: math.MaxFloat64, Factor: 0.05},
}

// fuzzBounds returns the [min, max] interval bounds after fuzz for a given
// interval, never dropping below 2 days or above maximumInterval.
func fuzzBounds(interval, maximumInterval float64) (minIvl, maxIvl int) {
	if interval < 2.5 {
		rounded := int(math.Round(interval))
		return rounded, rounded
	}

	delta := 1.0
	for _, r := range fuzzRanges {
		delta += r.Factor * math.Max(math.Min(interval, r.End)-r.Start, 0.0)
	}

	minIvl = int(math.Round(interval - delta))
	maxIvl = int(math.Round(interval + delta))

	if minIvl < 2 {
		minIvl = 2
	}
	maxInt := int(maximumInterval)
	if maxIvl > maxInt {
		maxIvl = maxInt
	}
	if minIvl > maxIvl {
		minIvl = maxIvl
	}

	return minIvl, maxIvl
}

// applyFuzz perturbs a REVIEW-state interval deterministically. Intervals
// below 3 days are returned unchanged (spec-adjacent: fuzz only applies to
// intervals "≥ 3 days" per the engine's opt-in fuzz config). The perturbation
// is seeded from card state, never from wall-clock time, so replaying the
// same review log with EnableFuzz on always reaches the same interval.
func applyFuzz(interval int, maximumInterval int, reps int, stability, difficulty float64) int {
	if interval < 3 {
		return interval
	}

	minIvl, maxIvl := fuzzBounds(float64(interval), float64(maximumInterval))
	if minIvl >= maxIvl {
		return minIvl
	}

	seed := fuzzSeed(reps, stability, difficulty)
	//nolint:gosec // deterministic fuzz, not cryptographic
	rng := rand.New(rand.NewSource(seed))
	return minIvl + rng.Intn(maxIvl-minIvl+1)
}

// fuzzSeed derives a deterministic seed from card state via FNV-1a, so the
// same (reps, stability, difficulty) triple always perturbs identically.
func fuzzSeed(reps int, stability, difficulty float64) int64 {
	h := fnv.New64a()
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(reps))
	h.Write(b)
	binary.LittleEndian.PutUint64(b, math.Float64bits(stability))
	h.Write(b)
	binary.LittleEndian.PutUint64(b, math.Float64bits(difficulty))
	h.Write(b)
	return int64(h.Sum64())
}
