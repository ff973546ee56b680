package mode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
)

// ErrAlreadyRunning reports a second Start on a live activity.
var ErrAlreadyRunning = errors.New("activity already running")

// ErrStopTimeout reports that an activity failed to observe its stop signal
// within the cadence bound.
var ErrStopTimeout = errors.New("activity did not stop within bound")

// Speaker is the activity-facing slice of the audio arbiter.
type Speaker interface {
	Speak(text string, priority arbiter.Priority)
}

// Activity is one backgrounded, cancellable mode behavior.
//
// Lifecycle: Created -> Running -> StopRequested -> Stopped. Start launches
// the periodic loop on its own goroutine so slow collaborator calls never
// block button handling; RequestStop is the only cancellation primitive and
// is observed within one cadence interval.
type Activity interface {
	// Start acquires resources and begins the loop. It fails synchronously
	// when a required resource is unavailable, in which case no background
	// work is left behind.
	Start() error
	// RequestStop signals cooperative cancellation; it never blocks.
	RequestStop()
	// Running reports true between a successful Start and loop termination.
	Running() bool
	// Done is closed once the loop has fully stopped and released resources.
	Done() <-chan struct{}
	// Kind identifies the mode this activity implements.
	Kind() Kind
	// Interval is the loop cadence, bounding stop latency.
	Interval() time.Duration
}

// hooks are the per-mode callbacks driven by the shared runner.
type hooks struct {
	// acquire claims collaborator resources before the loop starts; a
	// non-nil error fails Start synchronously.
	acquire func(ctx context.Context) error
	// tick performs one cadence step. A returned error is a transient
	// collaborator failure: logged, loop continues.
	tick func(ctx context.Context) error
	// release frees acquired resources after the loop exits.
	release func()
}

// runner implements the Activity lifecycle shared by all modes.
type runner struct {
	kind      Kind
	interval  time.Duration
	immediate bool
	logger    *slog.Logger
	hooks     hooks

	mu      sync.Mutex
	running bool
	handle  string
	cancel  context.CancelFunc
	done    chan struct{}
}

func newRunner(kind Kind, interval time.Duration, immediate bool, h hooks, logger *slog.Logger) *runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	done := make(chan struct{})
	close(done) // Created counts as stopped until Start succeeds.
	return &runner{
		kind:      kind,
		interval:  interval,
		immediate: immediate,
		logger:    logger,
		hooks:     h,
		done:      done,
	}
}

func (r *runner) Kind() Kind              { return r.kind }
func (r *runner) Interval() time.Duration { return r.interval }

func (r *runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *runner) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())

	if r.hooks.acquire != nil {
		if err := r.hooks.acquire(ctx); err != nil {
			cancel()
			r.mu.Unlock()
			return fmt.Errorf("start %s activity: %w", r.kind, err)
		}
	}

	done := make(chan struct{})
	r.running = true
	r.handle = uuid.NewString()
	r.cancel = cancel
	r.done = done
	handle := r.handle
	r.mu.Unlock()

	r.logger.Info("activity started", "mode", r.kind.String(), "handle", handle)
	go r.loop(ctx, done, handle)
	return nil
}

func (r *runner) RequestStop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *runner) loop(ctx context.Context, done chan struct{}, handle string) {
	defer func() {
		if r.hooks.release != nil {
			r.hooks.release()
		}

		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.mu.Unlock()

		r.logger.Info("activity stopped", "mode", r.kind.String(), "handle", handle)
		close(done)
	}()

	if r.immediate {
		if ctx.Err() != nil {
			return
		}
		r.runTick(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runTick(ctx)
		}
	}
}

func (r *runner) runTick(ctx context.Context) {
	if err := r.hooks.tick(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("activity tick failed",
			"mode", r.kind.String(),
			"error", err.Error(),
		)
	}
}

// AwaitStop blocks until the activity reports stopped or the bound elapses.
func AwaitStop(a Activity, bound time.Duration) error {
	select {
	case <-a.Done():
		return nil
	case <-time.After(bound):
		return fmt.Errorf("%w: %s after %s", ErrStopTimeout, a.Kind(), bound)
	}
}
