package mode

import "context"

// FrameSource captures still frames from the wearable camera.
type FrameSource interface {
	// Probe verifies the camera is usable; activities call it at Start so
	// acquisition failures surface synchronously.
	Probe(ctx context.Context) error
	// Capture returns one encoded frame.
	Capture(ctx context.Context) ([]byte, error)
}

// TextExtractor runs OCR over one captured frame.
type TextExtractor interface {
	ExtractText(ctx context.Context, frame []byte) (string, error)
}

// Detector finds labeled objects in one captured frame, returning counts per
// label above the configured confidence threshold.
type Detector interface {
	Detect(ctx context.Context, frame []byte) (map[string]int, error)
}

// Ranger measures the forward obstacle distance in centimeters.
type Ranger interface {
	MeasureDistanceCM(ctx context.Context) (float64, error)
}

// RangerOpener acquires the ranging hardware for the lifetime of one
// distance activity.
type RangerOpener interface {
	OpenRanger(ctx context.Context) (Ranger, func(), error)
}
