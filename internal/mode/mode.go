// Package mode defines the selectable operating modes and their background
// activity lifecycle.
package mode

// Kind identifies one selectable operating mode, or Idle.
type Kind int

// Cycle order: Idle -> Time -> TextReading -> ObjectDetection -> Distance -> Idle.
const (
	Idle Kind = iota
	Time
	TextReading
	ObjectDetection
	Distance

	kindCount
)

// Next returns the following mode in cycle order, wrapping back to Idle.
func (k Kind) Next() Kind {
	return (k + 1) % kindCount
}

// String returns the short mode name used in logs and status output.
func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Time:
		return "time"
	case TextReading:
		return "text_reading"
	case ObjectDetection:
		return "object_detection"
	case Distance:
		return "distance"
	default:
		return "unknown"
	}
}

// Spoken returns the mode name announced to the wearer.
func (k Kind) Spoken() string {
	switch k {
	case Idle:
		return "idle mode"
	case Time:
		return "time mode"
	case TextReading:
		return "text recognition and reading mode"
	case ObjectDetection:
		return "object detection mode"
	case Distance:
		return "distance measurements mode"
	default:
		return "unknown mode"
	}
}
