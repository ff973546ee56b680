package mode

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
	"github.com/YousefSamm/smart-vision-assistant/internal/phrase"
)

// ObjectDetectionOptions tunes the detection activity.
type ObjectDetectionOptions struct {
	Interval time.Duration
}

// NewObjectDetection builds the detection activity: every interval it
// captures a frame, asks the detector for labeled counts, and speaks the
// aggregated scene description. Camera availability is verified at Start.
func NewObjectDetection(
	opts ObjectDetectionOptions,
	camera FrameSource,
	detector Detector,
	speaker Speaker,
	logger *slog.Logger,
) Activity {
	return newRunner(ObjectDetection, opts.Interval, false, hooks{
		acquire: func(ctx context.Context) error {
			if err := camera.Probe(ctx); err != nil {
				return fmt.Errorf("camera unavailable: %w", err)
			}
			return nil
		},
		tick: func(ctx context.Context) error {
			frame, err := camera.Capture(ctx)
			if err != nil {
				return fmt.Errorf("capture frame: %w", err)
			}

			counts, err := detector.Detect(ctx, frame)
			if err != nil {
				return fmt.Errorf("detect objects: %w", err)
			}

			speaker.Speak(phrase.DescribeCounts(counts), arbiter.Normal)
			return nil
		},
	}, logger)
}
