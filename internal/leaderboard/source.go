package leaderboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/metrics"
	"github.com/preston-bernstein/twin-reveal-service/internal/poller"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

// Source modes accepted by LEADERBOARD_SOURCE.
const (
	ModePoll      = "poll"
	ModeSubscribe = "subscribe"
)

const pollerStopTimeout = 5 * time.Second

// Source feeds the leaderboard with full lists until ctx ends.
type Source interface {
	Run(ctx context.Context, deliver func([]guesses.Guess)) error
	Mode() string
}

// PollingSource re-reads storage on an interval.
type PollingSource struct {
	lister   poller.Lister
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Recorder

	mu     sync.Mutex
	poller *poller.Poller
}

// NewPollingSource builds a polling source; interval <= 0 uses poller.DefaultInterval.
func NewPollingSource(lister poller.Lister, interval time.Duration, logger *slog.Logger, recorder *metrics.Recorder) *PollingSource {
	return &PollingSource{lister: lister, interval: interval, logger: logger, metrics: recorder}
}

func (s *PollingSource) Mode() string { return ModePoll }

func (s *PollingSource) Run(ctx context.Context, deliver func([]guesses.Guess)) error {
	p := poller.New(s.lister, poller.Sink(deliver), s.logger, s.metrics, s.interval)
	s.mu.Lock()
	s.poller = p
	s.mu.Unlock()

	p.Start(ctx)
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), pollerStopTimeout)
	defer cancel()
	return p.Stop(stopCtx)
}

// Status reports the health of the running poller; zero before Run.
func (s *PollingSource) Status() poller.Status {
	s.mu.Lock()
	p := s.poller
	s.mu.Unlock()
	if p == nil {
		return poller.Status{}
	}
	return p.Status()
}

// SubscriptionSource relays a storage push subscription.
type SubscriptionSource struct {
	sub store.Subscriber
}

// NewSubscriptionSource wraps sub.
func NewSubscriptionSource(sub store.Subscriber) *SubscriptionSource {
	return &SubscriptionSource{sub: sub}
}

func (s *SubscriptionSource) Mode() string { return ModeSubscribe }

func (s *SubscriptionSource) Run(ctx context.Context, deliver func([]guesses.Guess)) error {
	return s.sub.Subscribe(ctx, deliver)
}

// SelectSource picks the source for mode. Subscribe falls back to polling when the
// gateway has no push capability; any other mode polls.
func SelectSource(mode string, gw store.Gateway, interval time.Duration, logger *slog.Logger, recorder *metrics.Recorder) Source {
	if mode == ModeSubscribe {
		if sub, ok := store.SubscriberOf(gw); ok {
			return NewSubscriptionSource(sub)
		}
		logging.Warn(logger, "storage cannot subscribe, falling back to polling")
	}
	return NewPollingSource(gw, interval, logger, recorder)
}

// RunWithFallback runs src and, if a subscription fails before ctx ends, keeps the
// leaderboard alive by polling gw instead.
func RunWithFallback(ctx context.Context, src Source, gw store.Gateway, interval time.Duration, logger *slog.Logger, recorder *metrics.Recorder, deliver func([]guesses.Guess)) error {
	err := src.Run(ctx, deliver)
	if err == nil || ctx.Err() != nil || src.Mode() == ModePoll {
		return err
	}
	logging.Error(logger, "leaderboard subscription failed, falling back to polling", err)
	return NewPollingSource(gw, interval, logger, recorder).Run(ctx, store.Monotonic(deliver))
}
