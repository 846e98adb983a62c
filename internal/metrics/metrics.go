// Package metrics exposes Prometheus collectors for the four core engines
// and the HTTP transport. Every collector is package-level via promauto, so
// importing this package is enough to register it against the default
// registry; internal/app wires /metrics for scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Scheduler ──────────────────────────────────────────────────────────────

// SchedulerReviews counts FSRS reviews by resulting card state and rating.
var SchedulerReviews = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "myenglish",
	Subsystem: "scheduler",
	Name:      "reviews_total",
	Help:      "Total reviews processed by the FSRS scheduler, by resulting state and rating.",
}, []string{"state", "rating"})

// SchedulerLapses counts transitions into RELEARNING.
var SchedulerLapses = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "myenglish",
	Subsystem: "scheduler",
	Name:      "lapses_total",
	Help:      "Total memory states that lapsed into RELEARNING.",
})

// ─── Placement ──────────────────────────────────────────────────────────────

// PlacementSteps tracks the number of CAT steps a completed session took.
var PlacementSteps = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "myenglish",
	Subsystem: "placement",
	Name:      "session_steps",
	Help:      "Number of items presented in a completed placement session.",
	Buckets:   []float64{5, 6, 7, 8, 9, 10, 11, 12},
})

// PlacementSessionsCompleted counts completed placement sessions by final CEFR.
var PlacementSessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "myenglish",
	Subsystem: "placement",
	Name:      "sessions_completed_total",
	Help:      "Total completed placement sessions by final CEFR level.",
}, []string{"final_cefr"})

// ─── Composer ───────────────────────────────────────────────────────────────

// ComposerBatchSize tracks how many items a compose call actually returned.
var ComposerBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "myenglish",
	Subsystem: "composer",
	Name:      "batch_size",
	Help:      "Number of items returned by a single session-compose call.",
	Buckets:   []float64{0, 5, 10, 15, 20, 25, 30},
})

// ComposerTierFill counts how many items each priority tier contributed.
var ComposerTierFill = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "myenglish",
	Subsystem: "composer",
	Name:      "tier_fill_total",
	Help:      "Total items contributed by each composer priority tier.",
}, []string{"tier"})

// ─── Credit distributor ─────────────────────────────────────────────────────

// CreditDistributions counts words credited by credit type.
var CreditDistributions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "myenglish",
	Subsystem: "credit",
	Name:      "distributions_total",
	Help:      "Total words credited by the contextual credit distributor, by credit type.",
}, []string{"credit_type"})
