// Package fsm defines the mode controller's selection state machine.
package fsm

import (
	"fmt"

	"github.com/YousefSamm/smart-vision-assistant/internal/mode"
)

// Phase is the controller's coarse lifecycle position.
type Phase string

// Event is one controller-level trigger derived from a button press.
type Event string

const (
	// PhaseIdle: no mode selected, nothing running.
	PhaseIdle Phase = "idle"
	// PhaseSelected: a mode is chosen but not yet confirmed.
	PhaseSelected Phase = "selected"
	// PhaseActive: the selected mode's activity is running.
	PhaseActive Phase = "active"
)

const (
	// EventCycle advances the selection to the next mode in cycle order.
	EventCycle Event = "cycle"
	// EventConfirm starts the selected mode.
	EventConfirm Event = "confirm"
	// EventExit stops the active mode and returns to idle.
	EventExit Event = "exit"
)

// State is the composite controller state: lifecycle phase plus selection.
// Invariant: PhaseIdle implies mode.Idle, and PhaseSelected/PhaseActive imply
// a non-idle selection.
type State struct {
	Phase Phase
	Mode  mode.Kind
}

// Initial returns the process start state.
func Initial() State {
	return State{Phase: PhaseIdle, Mode: mode.Idle}
}

// Transition applies one event to the state, returning the next state or an
// invalid-transition error with the state unchanged. EventCycle is not legal
// in PhaseActive: the controller stops the running activity first and applies
// EventExit followed by EventCycle.
func Transition(current State, event Event) (State, error) {
	switch current.Phase {
	case PhaseIdle, PhaseSelected:
		switch event {
		case EventCycle:
			next := current.Mode.Next()
			if next == mode.Idle {
				return State{Phase: PhaseIdle, Mode: mode.Idle}, nil
			}
			return State{Phase: PhaseSelected, Mode: next}, nil
		case EventConfirm:
			if current.Phase != PhaseSelected {
				return current, invalidTransition(current, event)
			}
			return State{Phase: PhaseActive, Mode: current.Mode}, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhaseActive:
		switch event {
		case EventExit:
			return State{Phase: PhaseIdle, Mode: mode.Idle}, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown phase %q", current.Phase)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s(%s) --(%s)--> ?", state.Phase, state.Mode, event)
}
