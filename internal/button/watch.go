package button

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrHardwareUnavailable reports that the button hardware can no longer be
// read. The device is uncontrollable without button input, so this is fatal
// to the input path rather than silently swallowed.
var ErrHardwareUnavailable = errors.New("button hardware unavailable")

// maxConsecutiveSampleErrors is the failure run length treated as a dead line
// rather than a transient glitch.
const maxConsecutiveSampleErrors = 3

// Levels is one instantaneous sample of the three button lines.
type Levels struct {
	Mode    bool
	Confirm bool
	Exit    bool
}

// Sampler reads the current pressed level of each button line.
type Sampler interface {
	Sample() (Levels, error)
}

// WatchConfig tunes the polling and debounce behavior of Watch.
type WatchConfig struct {
	PollInterval time.Duration
	Window       time.Duration
}

// Watch polls the sampler, converts level changes into rising edges, debounces
// them, and delivers presses in observation order on the returned channel.
//
// The press channel is closed when the watcher exits. A persistent sampler
// failure is reported once on the error channel before exit.
func Watch(ctx context.Context, sampler Sampler, cfg WatchConfig, logger *slog.Logger) (<-chan Press, <-chan error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	presses := make(chan Press, 8)
	errc := make(chan error, 1)

	go func() {
		defer close(presses)

		debouncer := NewDebouncer(cfg.Window)
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()

		var previous Levels
		consecutiveErrors := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			levels, err := sampler.Sample()
			if err != nil {
				consecutiveErrors++
				logger.Warn("button sample failed",
					"error", err.Error(),
					"consecutive", consecutiveErrors,
				)
				if consecutiveErrors >= maxConsecutiveSampleErrors {
					errc <- fmt.Errorf("%w: %v", ErrHardwareUnavailable, err)
					return
				}
				continue
			}
			consecutiveErrors = 0

			now := time.Now()
			for _, edge := range risingEdges(previous, levels, now) {
				press, ok := debouncer.Accept(edge)
				if !ok {
					continue
				}
				select {
				case presses <- press:
					logger.Info("button pressed", "button", press.Button.String())
				case <-ctx.Done():
					return
				}
			}
			previous = levels
		}
	}()

	return presses, errc
}

// risingEdges reports the buttons that transitioned released-to-pressed
// between two samples, in fixed button order.
func risingEdges(previous, current Levels, at time.Time) []RawEdge {
	var edges []RawEdge
	if current.Mode && !previous.Mode {
		edges = append(edges, RawEdge{Button: Mode, At: at})
	}
	if current.Confirm && !previous.Confirm {
		edges = append(edges, RawEdge{Button: Confirm, At: at})
	}
	if current.Exit && !previous.Exit {
		edges = append(edges, RawEdge{Button: Exit, At: at})
	}
	return edges
}
