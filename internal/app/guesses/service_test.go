package guesses

import (
	"context"
	"errors"
	"testing"

	domain "github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/metrics"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
	"github.com/preston-bernstein/twin-reveal-service/internal/testutil"
)

func TestSubmitValidatesBeforeStoring(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewService(mem, domain.DefaultTarget, nil)

	_, err := svc.Submit(context.Background(), domain.Input{Name: "  ", Twin1: domain.Girl, Twin2: domain.Girl, Timestamp: 1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	list, _ := mem.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("expected storage untouched, got %d records", len(list))
	}
}

func TestSubmitNormalizesAndRecords(t *testing.T) {
	rec := metrics.NewRecorder()
	svc := NewService(store.NewMemoryStore(), domain.DefaultTarget, rec)

	created, err := svc.Submit(context.Background(), domain.Input{Name: " Alice ", Twin1: "Girl", Twin2: "girl", Timestamp: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Alice" || created.Twin1 != domain.Girl {
		t.Fatalf("expected normalized guess, got %+v", created)
	}
	submitted, correct := rec.GuessCounts()
	if submitted != 1 || correct != 1 {
		t.Fatalf("expected 1 correct submission, got %d/%d", submitted, correct)
	}
}

func TestLeaderboardAggregates(t *testing.T) {
	svc := NewService(store.NewMemoryStore(testutil.SampleLeaderboard()...), domain.DefaultTarget, nil)
	summary, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 3 || summary.CorrectCount != 2 || summary.PercentageLabel != "66.7" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Guesses[0].Name != "Cara" {
		t.Fatalf("expected newest first, got %s", summary.Guesses[0].Name)
	}
}
