// Package button turns noisy physical button signals into clean press events.
package button

import "time"

// ID identifies one of the three physical buttons.
type ID int

const (
	Mode ID = iota
	Confirm
	Exit
)

// String returns the short button name used in logs and IPC commands.
func (id ID) String() string {
	switch id {
	case Mode:
		return "mode"
	case Confirm:
		return "confirm"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// RawEdge is one rising edge observed on a button line before debouncing.
type RawEdge struct {
	Button ID
	At     time.Time
}

// Press is a debounced, accepted button press delivered to the controller.
type Press struct {
	Button ID
	At     time.Time
}
