package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/leaderboard"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

// State is a step of one round.
type State string

const (
	StateInput     State = "input"
	StateCountdown State = "countdown"
	StateReveal    State = "reveal"
)

// Mode controls how Submit treats the storage write.
type Mode string

const (
	// ModeOptimistic shows the guess locally and writes in the background.
	ModeOptimistic Mode = "optimistic"
	// ModeAwaited waits for storage before starting the countdown.
	ModeAwaited Mode = "awaited"
)

const (
	// CountdownTicks is the fixed length of the countdown.
	CountdownTicks = 5
	// DefaultTick is the time between countdown ticks.
	DefaultTick = time.Second
)

var (
	// ErrCannotSubmit means the name is blank or a twin is unchosen.
	ErrCannotSubmit = errors.New("name and both guesses are required")
	// ErrWrongState means the action is not allowed in the current state.
	ErrWrongState = errors.New("action not allowed in current state")
)

// Snapshot is the observable controller state.
type Snapshot struct {
	State     State
	Name      string
	Twin1     guesses.Gender
	Twin2     guesses.Gender
	Remaining int
	Result    *Result
}

// Options configures a Controller.
type Options struct {
	Mode     Mode
	Target   guesses.TargetPair
	Tick     time.Duration
	Board    *leaderboard.Board
	Now      func() time.Time
	OnChange func(Snapshot)
	OnError  func(error)
	Logger   *slog.Logger
}

// Controller runs the input → countdown → reveal flow for one player.
type Controller struct {
	gateway store.Gateway
	opts    Options

	mu         sync.Mutex
	state      State
	submitting bool
	name       string
	twin1      guesses.Gender
	twin2      guesses.Gender
	remaining  int
	result     *Result
	revealed   chan struct{}
	background sync.WaitGroup
}

// NewController returns a Controller in the input state.
func NewController(gw store.Gateway, opts Options) *Controller {
	if opts.Mode == "" {
		opts.Mode = ModeAwaited
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !opts.Target.Twin1.Valid() || !opts.Target.Twin2.Valid() {
		opts.Target = guesses.DefaultTarget
	}
	return &Controller{
		gateway:   gw,
		opts:      opts,
		state:     StateInput,
		remaining: CountdownTicks,
		revealed:  make(chan struct{}),
	}
}

// SetName records the player name.
func (c *Controller) SetName(name string) error {
	return c.updateInput(func() { c.name = name })
}

// ChooseTwin1 records the first twin guess.
func (c *Controller) ChooseTwin1(g guesses.Gender) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %q", guesses.ErrValidation, g)
	}
	return c.updateInput(func() { c.twin1 = g })
}

// ChooseTwin2 records the second twin guess.
func (c *Controller) ChooseTwin2(g guesses.Gender) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %q", guesses.ErrValidation, g)
	}
	return c.updateInput(func() { c.twin2 = g })
}

// CanSubmit reports whether the name is non-blank and both twins are chosen.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Controller) canSubmitLocked() bool {
	return strings.TrimSpace(c.name) != "" && c.twin1.Valid() && c.twin2.Valid()
}

// Submit sends the guess and starts the countdown.
// In awaited mode a storage failure leaves the controller in input and is returned.
func (c *Controller) Submit(ctx context.Context) (guesses.Guess, error) {
	c.mu.Lock()
	if c.state != StateInput || c.submitting {
		c.mu.Unlock()
		return guesses.Guess{}, ErrWrongState
	}
	if !c.canSubmitLocked() {
		c.mu.Unlock()
		return guesses.Guess{}, ErrCannotSubmit
	}
	in := guesses.Input{
		Name:      strings.TrimSpace(c.name),
		Twin1:     c.twin1,
		Twin2:     c.twin2,
		Timestamp: c.opts.Now().UnixMilli(),
	}
	c.submitting = true
	c.mu.Unlock()

	if c.opts.Mode == ModeOptimistic {
		local := in.WithID("")
		if c.opts.Board != nil {
			c.opts.Board.AppendPending(local)
		}
		c.background.Add(1)
		go c.createInBackground(context.WithoutCancel(ctx), in)
		c.startCountdown(local)
		return local, nil
	}

	created, err := c.gateway.Create(ctx, in)
	if err != nil {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		logging.Error(c.opts.Logger, "submit guess failed", err)
		return guesses.Guess{}, err
	}
	c.startCountdown(created)
	return created, nil
}

func (c *Controller) createInBackground(ctx context.Context, in guesses.Input) {
	defer c.background.Done()
	if _, err := c.gateway.Create(ctx, in); err != nil {
		logging.Error(c.opts.Logger, "background submit failed", err)
		if c.opts.OnError != nil {
			c.opts.OnError(err)
		}
	}
}

func (c *Controller) startCountdown(g guesses.Guess) {
	c.mu.Lock()
	c.submitting = false
	c.state = StateCountdown
	c.remaining = CountdownTicks
	revealed := c.revealed
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	go c.runCountdown(g, revealed)
}

// runCountdown is not cancellable; it always ends in reveal.
func (c *Controller) runCountdown(g guesses.Guess, revealed chan struct{}) {
	timer := time.NewTimer(c.opts.Tick)
	defer timer.Stop()
	for i := 0; i < CountdownTicks; i++ {
		<-timer.C
		c.mu.Lock()
		c.remaining--
		last := c.remaining == 0
		if last {
			result := Score(g, c.opts.Target)
			c.result = &result
			c.state = StateReveal
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		if last {
			close(revealed)
			return
		}
		timer.Reset(c.opts.Tick)
	}
}

// Wait blocks until the current round reaches reveal or ctx ends.
func (c *Controller) Wait(ctx context.Context) (Result, error) {
	c.mu.Lock()
	revealed := c.revealed
	c.mu.Unlock()

	select {
	case <-revealed:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Result{}, ErrWrongState
	}
	return *c.result, nil
}

// Result returns the reveal outcome; ok is false outside reveal.
func (c *Controller) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReveal || c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

// PlayAgain clears the round and returns to input. Only allowed from reveal.
func (c *Controller) PlayAgain() error {
	c.mu.Lock()
	if c.state != StateReveal {
		c.mu.Unlock()
		return ErrWrongState
	}
	c.state = StateInput
	c.name = ""
	c.twin1 = ""
	c.twin2 = ""
	c.remaining = CountdownTicks
	c.result = nil
	c.revealed = make(chan struct{})
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the current step.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Flush waits for optimistic background writes to finish.
func (c *Controller) Flush() {
	c.background.Wait()
}

func (c *Controller) updateInput(apply func()) error {
	c.mu.Lock()
	if c.state != StateInput {
		c.mu.Unlock()
		return ErrWrongState
	}
	apply()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     c.state,
		Name:      c.name,
		Twin1:     c.twin1,
		Twin2:     c.twin2,
		Remaining: c.remaining,
	}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	return s
}

func (c *Controller) notify(s Snapshot) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(s)
	}
}
