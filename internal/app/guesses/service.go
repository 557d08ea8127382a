package guesses

import (
	"context"

	domain "github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/leaderboard"
	"github.com/preston-bernstein/twin-reveal-service/internal/metrics"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

// Service coordinates guess operations over a storage gateway.
type Service struct {
	gateway store.Gateway
	target  domain.TargetPair
	metrics *metrics.Recorder
}

// NewService constructs a Service scoring against target.
func NewService(gw store.Gateway, target domain.TargetPair, recorder *metrics.Recorder) *Service {
	return &Service{gateway: gw, target: target, metrics: recorder}
}

// Target returns the configured actual pair.
func (s *Service) Target() domain.TargetPair {
	return s.target
}

// Gateway exposes the underlying storage gateway.
func (s *Service) Gateway() store.Gateway {
	return s.gateway
}

// List returns every stored guess in storage order.
func (s *Service) List(ctx context.Context) ([]domain.Guess, error) {
	return s.gateway.List(ctx)
}

// Submit validates and stores a guess. Invalid input never reaches storage.
func (s *Service) Submit(ctx context.Context, in domain.Input) (domain.Guess, error) {
	valid, err := domain.Validate(in)
	if err != nil {
		return domain.Guess{}, err
	}
	created, err := s.gateway.Create(ctx, valid)
	if err != nil {
		return domain.Guess{}, err
	}
	s.metrics.RecordGuessSubmitted(s.target.Matches(created))
	return created, nil
}

// Leaderboard aggregates the stored guesses.
func (s *Service) Leaderboard(ctx context.Context) (leaderboard.Summary, error) {
	list, err := s.gateway.List(ctx)
	if err != nil {
		return leaderboard.Summary{}, err
	}
	return leaderboard.Summarize(list, s.target), nil
}
