// Package contentgen defines the boundary between the core engines and the
// external LLM content generator (spec §1: out of scope, "interfaces
// only" — an I/O adapter the core consumes but this repo does not
// implement). It exists so internal/app has something concrete to wire a
// real client against, and so the circuit breaker decorator below has a
// narrow interface to wrap.
package contentgen

import (
	"context"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// GenerateRequest is what the core would ask an external generator for: one
// new content item for a given word, at a given difficulty. See the
// teacher's enricher.EnrichContext for the shape this generalizes — a
// single-word request carrying just enough context for the generator to
// produce a usable item.
type GenerateRequest struct {
	Language   string
	TargetWord string
	CEFR       domain.CEFR
}

// Generator produces new content items on demand. Implementations are
// expected to call out to an LLM or similar service; this repo supplies
// none (spec non-goal: "the core does not generate content").
type Generator interface {
	GenerateSentenceItem(ctx context.Context, req GenerateRequest) (domain.Item, error)
}

// GeneratorFunc adapts a plain function to Generator, the way the teacher's
// transport layer adapts http.HandlerFunc.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (domain.Item, error)

func (f GeneratorFunc) GenerateSentenceItem(ctx context.Context, req GenerateRequest) (domain.Item, error) {
	return f(ctx, req)
}
