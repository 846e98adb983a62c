package contentgen_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/config"
	"github.com/heartmarshall/myenglish-backend/internal/contentgen"
	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

func TestCircuitBreakerGeneratorTripsAfterConsecutiveFailures(t *testing.T) {
	want := errors.New("generator unavailable")
	calls := 0
	failing := contentgen.GeneratorFunc(func(_ context.Context, _ contentgen.GenerateRequest) (domain.Item, error) {
		calls++
		return domain.Item{}, want
	})

	settings := contentgen.NewBreakerSettings("test", config.ContentGenConfig{
		BreakerMaxRequests:      1,
		BreakerInterval:         time.Minute,
		BreakerTimeout:          time.Minute,
		BreakerFailureThreshold: 2,
	})
	gen := contentgen.NewCircuitBreakerGenerator(failing, settings)

	for i := 0; i < 2; i++ {
		if _, err := gen.GenerateSentenceItem(context.Background(), contentgen.GenerateRequest{}); !errors.Is(err, want) {
			t.Fatalf("call %d: err = %v, want %v", i, err, want)
		}
	}

	// The breaker has now seen 2 consecutive failures and should be open;
	// further calls fail fast without reaching the underlying generator.
	if _, err := gen.GenerateSentenceItem(context.Background(), contentgen.GenerateRequest{}); err == nil {
		t.Fatal("expected the open breaker to return an error")
	}
	if calls != 2 {
		t.Errorf("underlying generator called %d times, want 2 (breaker should short-circuit the 3rd call)", calls)
	}
}

func TestCircuitBreakerGeneratorPassesThroughOnSuccess(t *testing.T) {
	want := domain.Item{ID: "item-1", Language: "en"}
	ok := contentgen.GeneratorFunc(func(_ context.Context, _ contentgen.GenerateRequest) (domain.Item, error) {
		return want, nil
	})

	settings := contentgen.NewBreakerSettings("test", config.ContentGenConfig{
		BreakerMaxRequests:      3,
		BreakerInterval:         time.Minute,
		BreakerTimeout:          time.Minute,
		BreakerFailureThreshold: 5,
	})
	gen := contentgen.NewCircuitBreakerGenerator(ok, settings)

	got, err := gen.GenerateSentenceItem(context.Background(), contentgen.GenerateRequest{Language: "en", TargetWord: "word"})
	if err != nil {
		t.Fatalf("GenerateSentenceItem: %v", err)
	}
	if got != want {
		t.Errorf("got = %+v, want %+v", got, want)
	}
}
