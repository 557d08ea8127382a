package server

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/twin-reveal-service/internal/leaderboard"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
)

// startFeed keeps the hub supplied with the current list until ctx ends.
func (s *Server) startFeed(ctx context.Context) {
	interval := s.cfg.Leaderboard.PollInterval
	src := leaderboard.SelectSource(s.cfg.Leaderboard.Source, s.gateway, interval, s.logger, s.metrics)
	logging.Info(s.logger, "leaderboard feed starting", slog.String("mode", src.Mode()))

	s.feedDone = make(chan struct{})
	go func() {
		defer close(s.feedDone)
		if err := leaderboard.RunWithFallback(ctx, src, s.gateway, interval, s.logger, s.metrics, s.hub.Publish); err != nil {
			logging.Error(s.logger, "leaderboard feed stopped", err)
		}
	}()
}

func (s *Server) waitFeed(ctx context.Context) error {
	if s.feedDone == nil {
		return nil
	}
	select {
	case <-s.feedDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ready reports whether the feed has published at least once.
func (s *Server) ready() (bool, string) {
	if s.hub.Ready() {
		return true, ""
	}
	return false, "leaderboard not loaded"
}
