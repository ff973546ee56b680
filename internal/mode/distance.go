package mode

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
	"github.com/YousefSamm/smart-vision-assistant/internal/phrase"
)

// DistanceOptions tunes the ultrasonic ranging activity.
type DistanceOptions struct {
	Interval time.Duration
	// WarningCM is the threshold below which repeating warnings are spoken.
	WarningCM float64
}

// NewDistance builds the ranging activity. The sensor is opened at Start and
// closed when the loop exits. The first reading is always announced; after
// that, readings are spoken only while closer than the warning threshold,
// with interrupt priority so stale announcements never mask a live obstacle.
func NewDistance(opts DistanceOptions, opener RangerOpener, speaker Speaker, logger *slog.Logger) Activity {
	var (
		mu        sync.Mutex
		ranger    Ranger
		closeFn   func()
		announced bool
	)

	return newRunner(Distance, opts.Interval, true, hooks{
		acquire: func(ctx context.Context) error {
			r, closer, err := opener.OpenRanger(ctx)
			if err != nil {
				return fmt.Errorf("ranging sensor unavailable: %w", err)
			}
			mu.Lock()
			ranger = r
			closeFn = closer
			announced = false
			mu.Unlock()
			return nil
		},
		tick: func(ctx context.Context) error {
			mu.Lock()
			r := ranger
			mu.Unlock()

			cm, err := r.MeasureDistanceCM(ctx)
			if err != nil {
				return fmt.Errorf("measure distance: %w", err)
			}

			mu.Lock()
			first := !announced
			announced = true
			mu.Unlock()

			if first {
				speaker.Speak(phrase.InitialDistance(cm), arbiter.Normal)
				return nil
			}
			if cm < opts.WarningCM {
				speaker.Speak(phrase.DistanceWarning(cm), arbiter.Interrupt)
			}
			return nil
		},
		release: func() {
			mu.Lock()
			closer := closeFn
			ranger = nil
			closeFn = nil
			mu.Unlock()
			if closer != nil {
				closer()
			}
		},
	}, logger)
}
