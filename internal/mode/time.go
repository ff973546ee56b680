package mode

import (
	"context"
	"log/slog"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
	"github.com/YousefSamm/smart-vision-assistant/internal/phrase"
)

// TimeOptions tunes the clock announcement activity.
type TimeOptions struct {
	Interval time.Duration
	Layout   string
	// Clock overrides the time source in tests; nil means time.Now.
	Clock func() time.Time
}

// NewTime builds the clock announcement activity: the current time is spoken
// immediately on start and then once per interval.
func NewTime(opts TimeOptions, speaker Speaker, logger *slog.Logger) Activity {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return newRunner(Time, opts.Interval, true, hooks{
		tick: func(ctx context.Context) error {
			speaker.Speak(phrase.CurrentTime(clock(), opts.Layout), arbiter.Normal)
			return nil
		},
	}, logger)
}
