// Package controller owns mode selection state and drives activity lifecycle
// from debounced button presses.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
	"github.com/YousefSamm/smart-vision-assistant/internal/button"
	"github.com/YousefSamm/smart-vision-assistant/internal/fsm"
	"github.com/YousefSamm/smart-vision-assistant/internal/ipc"
	"github.com/YousefSamm/smart-vision-assistant/internal/mode"
)

// defaultStopGrace pads the cadence interval when waiting for an activity to
// confirm its stop.
const defaultStopGrace = 500 * time.Millisecond

// Activities builds a fresh activity for a confirmed mode. A new instance is
// built per confirmation so no two handles for the same mode ever coexist.
type Activities interface {
	Build(kind mode.Kind) (mode.Activity, error)
}

// BuildFunc adapts a function to the Activities interface.
type BuildFunc func(kind mode.Kind) (mode.Activity, error)

func (f BuildFunc) Build(kind mode.Kind) (mode.Activity, error) {
	return f(kind)
}

// Status is a read-only snapshot of controller state for IPC reporting.
type Status struct {
	Phase           fsm.Phase
	Mode            mode.Kind
	ActivityRunning bool
}

// Controller is the single actor that consumes press events, mutates the
// selection state machine, starts and stops activities, and queues speech
// feedback. All transitions happen on the Run goroutine, one press at a
// time; concurrent readers only get snapshots.
type Controller struct {
	logger     *slog.Logger
	speaker    mode.Speaker
	activities Activities
	stopGrace  time.Duration

	mu     sync.RWMutex
	state  fsm.State
	active mode.Activity

	injects chan button.Press
}

// New constructs a controller in the idle state.
func New(logger *slog.Logger, speaker mode.Speaker, activities Activities) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		logger:     logger,
		speaker:    speaker,
		activities: activities,
		stopGrace:  defaultStopGrace,
		state:      fsm.Initial(),
		injects:    make(chan button.Press, 4),
	}
}

// Snapshot returns the current controller status.
func (c *Controller) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Phase:           c.state.Phase,
		Mode:            c.state.Mode,
		ActivityRunning: c.active != nil && c.active.Running(),
	}
}

// Run consumes presses until ctx is cancelled or the press channel closes,
// then stops any active activity before returning. Presses are handled to
// completion in arrival order; IPC-injected presses are merged into the same
// serialized stream.
func (c *Controller) Run(ctx context.Context, presses <-chan button.Press) error {
	defer c.stopActive("shutdown")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case press, ok := <-presses:
			if !ok {
				return nil
			}
			c.handlePress(press)
		case press := <-c.injects:
			c.handlePress(press)
		}
	}
}

func (c *Controller) handlePress(press button.Press) {
	state := c.currentState()
	c.logger.Info("handling press",
		"button", press.Button.String(),
		"phase", string(state.Phase),
		"mode", state.Mode.String(),
	)

	switch press.Button {
	case button.Mode:
		c.handleModePress()
	case button.Confirm:
		c.handleConfirmPress()
	case button.Exit:
		c.handleExitPress()
	}
}

// handleModePress advances the selection. When a mode is active it is
// stopped first; a switch never overlaps two running activities.
func (c *Controller) handleModePress() {
	state := c.currentState()

	if state.Phase == fsm.PhaseActive {
		c.stopActive("mode switch")
		next, err := fsm.Transition(state, fsm.EventExit)
		if err != nil {
			c.logger.Error("exit transition failed", "error", err.Error())
			return
		}
		state = next
		c.setState(state)
	}

	next, err := fsm.Transition(state, fsm.EventCycle)
	if err != nil {
		c.logger.Error("cycle transition failed", "error", err.Error())
		return
	}
	c.setState(next)

	c.logger.Info("mode selection changed", "mode", next.Mode.String())
	c.speaker.Speak("Switched to "+next.Mode.Spoken(), arbiter.Interrupt)
}

// handleConfirmPress starts the selected mode. Confirm is a no-op outside
// the selected phase: while idle there is nothing to confirm, and while
// active the running activity is left untouched.
func (c *Controller) handleConfirmPress() {
	state := c.currentState()
	if state.Phase != fsm.PhaseSelected {
		c.logger.Debug("confirm ignored", "phase", string(state.Phase))
		return
	}

	activity, err := c.activities.Build(state.Mode)
	if err != nil {
		c.logger.Error("build activity failed",
			"mode", state.Mode.String(),
			"error", err.Error(),
		)
		c.speaker.Speak(state.Mode.Spoken()+" is not available", arbiter.Interrupt)
		return
	}

	// Announce before starting so the activity's own first announcement
	// queues behind the confirmation instead of being cut by it.
	c.speaker.Speak(state.Mode.Spoken()+" selected", arbiter.Interrupt)

	if err := activity.Start(); err != nil {
		c.logger.Error("start activity failed",
			"mode", state.Mode.String(),
			"error", err.Error(),
		)
		c.speaker.Speak(state.Mode.Spoken()+" is not available", arbiter.Interrupt)
		return
	}

	next, err := fsm.Transition(state, fsm.EventConfirm)
	if err != nil {
		// The transition table guarantees Selected -> Active; fail loudly
		// rather than leak a running activity if that ever breaks.
		c.logger.Error("confirm transition failed", "error", err.Error())
		activity.RequestStop()
		return
	}

	c.mu.Lock()
	c.state = next
	c.active = activity
	c.mu.Unlock()

	c.logger.Info("mode confirmed", "mode", next.Mode.String())
}

// handleExitPress stops the active mode and returns to idle. Exit is a no-op
// while idle or merely selected.
func (c *Controller) handleExitPress() {
	state := c.currentState()
	if state.Phase != fsm.PhaseActive {
		c.logger.Debug("exit ignored", "phase", string(state.Phase))
		return
	}

	c.stopActive("exit")

	next, err := fsm.Transition(state, fsm.EventExit)
	if err != nil {
		c.logger.Error("exit transition failed", "error", err.Error())
		return
	}
	c.setState(next)

	c.logger.Info("returned to idle")
	c.speaker.Speak("Glass is now in idle mode", arbiter.Interrupt)
}

// stopActive requests a cooperative stop and waits for confirmation, bounded
// by the activity's cadence interval plus a grace margin. The wait blocks the
// controller goroutine by design: a stop must fully complete before any new
// activity starts.
func (c *Controller) stopActive(reason string) {
	c.mu.Lock()
	active := c.active
	c.active = nil
	c.mu.Unlock()

	if active == nil {
		return
	}

	active.RequestStop()
	bound := active.Interval() + c.stopGrace
	if err := mode.AwaitStop(active, bound); err != nil {
		c.logger.Error("activity stop timed out",
			"mode", active.Kind().String(),
			"reason", reason,
			"bound", bound.String(),
		)
		return
	}

	c.logger.Info("activity stopped",
		"mode", active.Kind().String(),
		"reason", reason,
	)
}

// Handle serves IPC commands: status queries and synthetic press injection.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	status := c.Snapshot()

	switch req.Command {
	case "status":
		return ipc.Response{
			OK:      true,
			State:   string(status.Phase),
			Mode:    status.Mode.String(),
			Message: "status",
		}
	case "mode", "confirm", "exit":
		return c.inject(req.Command, status)
	default:
		return ipc.Response{
			OK:    false,
			State: string(status.Phase),
			Mode:  status.Mode.String(),
			Error: fmt.Sprintf("unknown command: %s", req.Command),
		}
	}
}

// inject queues a synthetic press as if the physical button had been read.
func (c *Controller) inject(command string, status Status) ipc.Response {
	var id button.ID
	switch command {
	case "mode":
		id = button.Mode
	case "confirm":
		id = button.Confirm
	case "exit":
		id = button.Exit
	}

	select {
	case c.injects <- button.Press{Button: id, At: time.Now()}:
		return ipc.Response{
			OK:      true,
			State:   string(status.Phase),
			Mode:    status.Mode.String(),
			Message: fmt.Sprintf("%s press injected", command),
		}
	default:
		return ipc.Response{
			OK:    false,
			State: string(status.Phase),
			Mode:  status.Mode.String(),
			Error: "press queue is full",
		}
	}
}

func (c *Controller) currentState() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) setState(state fsm.State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
