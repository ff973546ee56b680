package button

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/serialio"
)

// Serial press codes emitted by the button microcontroller, one byte per
// observed edge.
const (
	serialModeCode    = 'M'
	serialConfirmCode = 'C'
	serialExitCode    = 'E'
)

const serialReadTimeout = 250 * time.Millisecond

// WatchSerial reads edge bytes from a button board on a serial port,
// debounces them, and delivers presses on the returned channel.
//
// The press channel is closed when the watcher exits; a port failure is
// reported once on the error channel. The caller retains port ownership and
// closes it after the watcher has stopped.
func WatchSerial(ctx context.Context, port serialio.Port, window time.Duration, logger *slog.Logger) (<-chan Press, <-chan error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	presses := make(chan Press, 8)
	errc := make(chan error, 1)

	go func() {
		defer close(presses)

		if err := port.SetReadTimeout(serialReadTimeout); err != nil {
			errc <- fmt.Errorf("%w: set read timeout: %v", ErrHardwareUnavailable, err)
			return
		}

		debouncer := NewDebouncer(window)
		buf := make([]byte, 1)

		for {
			if ctx.Err() != nil {
				return
			}

			n, err := port.Read(buf)
			if err != nil {
				if errors.Is(err, io.EOF) {
					errc <- fmt.Errorf("%w: serial stream closed", ErrHardwareUnavailable)
					return
				}
				errc <- fmt.Errorf("%w: %v", ErrHardwareUnavailable, err)
				return
			}
			if n == 0 {
				// Read timeout with no pending byte; loop to observe cancellation.
				continue
			}

			id, ok := decodePressCode(buf[0])
			if !ok {
				logger.Warn("unknown button code", "code", fmt.Sprintf("0x%02x", buf[0]))
				continue
			}

			press, accepted := debouncer.Accept(RawEdge{Button: id, At: time.Now()})
			if !accepted {
				continue
			}

			select {
			case presses <- press:
				logger.Info("button pressed", "button", press.Button.String())
			case <-ctx.Done():
				return
			}
		}
	}()

	return presses, errc
}

func decodePressCode(code byte) (ID, bool) {
	switch code {
	case serialModeCode:
		return Mode, true
	case serialConfirmCode:
		return Confirm, true
	case serialExitCode:
		return Exit, true
	default:
		return 0, false
	}
}
