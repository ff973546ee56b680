// Package arbiter serializes all spoken output through a single playback worker.
package arbiter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Priority orders a speech request against whatever is queued or playing.
type Priority int

const (
	// Normal requests append to the FIFO queue and wait their turn.
	Normal Priority = iota
	// Interrupt requests clear the queue, cut short in-flight playback, and
	// become the only pending item.
	Interrupt
)

func (p Priority) String() string {
	if p == Interrupt {
		return "interrupt"
	}
	return "normal"
}

// Request is one pending utterance owned by the arbiter queue.
type Request struct {
	ID       string
	Text     string
	Priority Priority
}

// Renderer turns text into audible speech. Render blocks until playback
// finishes or ctx is cancelled; it is only ever invoked from the arbiter's
// worker goroutine.
type Renderer interface {
	Render(ctx context.Context, text string) error
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, text string) error

func (f RenderFunc) Render(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Arbiter is the single point of truth for what is spoken and when. Any
// number of producers may call Speak and StopAll concurrently; queue state
// and the in-flight cancellation handle are guarded by one mutex so that
// enqueue, clear, and dequeue are atomic with respect to one another.
type Arbiter struct {
	logger   *slog.Logger
	renderer Renderer

	mu            sync.Mutex
	queue         []Request
	cancelCurrent context.CancelFunc
	closed        bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New constructs an arbiter and starts its playback worker.
func New(renderer Renderer, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &Arbiter{
		logger:   logger,
		renderer: renderer,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go a.worker()
	return a
}

// Speak enqueues text for playback and returns immediately. Interrupt
// priority atomically clears pending requests and cancels in-flight playback
// before taking the head of the queue.
func (a *Arbiter) Speak(text string, priority Priority) {
	req := Request{ID: uuid.NewString(), Text: text, Priority: priority}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if priority == Interrupt {
		a.queue = a.queue[:0]
		if a.cancelCurrent != nil {
			a.cancelCurrent()
		}
	}
	a.queue = append(a.queue, req)
	a.mu.Unlock()

	a.logger.Info("speech queued",
		"request_id", req.ID,
		"priority", priority.String(),
		"text", text,
	)
	a.signal()
}

// StopAll clears pending requests and halts in-flight playback immediately.
func (a *Arbiter) StopAll() {
	a.mu.Lock()
	a.queue = a.queue[:0]
	if a.cancelCurrent != nil {
		a.cancelCurrent()
	}
	a.mu.Unlock()

	a.logger.Info("speech queue cleared")
}

// Close stops playback and shuts the worker down. Speak calls after Close
// are dropped.
func (a *Arbiter) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	a.queue = a.queue[:0]
	if a.cancelCurrent != nil {
		a.cancelCurrent()
	}
	a.mu.Unlock()

	close(a.stop)
	<-a.done
}

// Pending reports the number of queued requests, excluding any in-flight one.
func (a *Arbiter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *Arbiter) signal() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// worker consumes the queue one request at a time, rendering each to audio
// synchronously from its own perspective.
func (a *Arbiter) worker() {
	defer close(a.done)

	for {
		select {
		case <-a.stop:
			return
		case <-a.wake:
		}

		for {
			req, ctx, ok := a.dequeue()
			if !ok {
				break
			}

			start := time.Now()
			err := a.renderer.Render(ctx, req.Text)
			a.finishCurrent()

			switch {
			case ctx.Err() != nil:
				a.logger.Info("speech interrupted",
					"request_id", req.ID,
					"elapsed_ms", time.Since(start).Milliseconds(),
				)
			case err != nil:
				a.logger.Error("speech render failed",
					"request_id", req.ID,
					"error", err.Error(),
				)
			default:
				a.logger.Debug("speech rendered",
					"request_id", req.ID,
					"elapsed_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}

// dequeue pops the queue head and installs its cancellation handle as the
// in-flight one, all under the same lock acquisition.
func (a *Arbiter) dequeue() (Request, context.Context, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || len(a.queue) == 0 {
		return Request{}, nil, false
	}

	req := a.queue[0]
	a.queue = a.queue[1:]

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelCurrent = cancel
	return req, ctx, true
}

// finishCurrent releases the in-flight cancellation handle.
func (a *Arbiter) finishCurrent() {
	a.mu.Lock()
	if a.cancelCurrent != nil {
		a.cancelCurrent()
		a.cancelCurrent = nil
	}
	a.mu.Unlock()
}
