package mode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
	"github.com/YousefSamm/smart-vision-assistant/internal/phrase"
)

// TextReadingOptions tunes the OCR reading activity.
type TextReadingOptions struct {
	Interval time.Duration
}

// NewTextReading builds the OCR activity: every interval it captures a frame,
// extracts text, and speaks any non-empty result. Camera availability is
// verified at Start.
func NewTextReading(
	opts TextReadingOptions,
	camera FrameSource,
	extractor TextExtractor,
	speaker Speaker,
	logger *slog.Logger,
) Activity {
	return newRunner(TextReading, opts.Interval, false, hooks{
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

			text, err := extractor.ExtractText(ctx, frame)
			if err != nil {
				return fmt.Errorf("extract text: %w", err)
			}

			if strings.TrimSpace(text) == "" {
				return nil
			}
			speaker.Speak(phrase.RecognizedText(text), arbiter.Normal)
			return nil
		},
	}, logger)
}
