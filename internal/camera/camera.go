// Package camera captures still frames by shelling out to a configurable
// capture command that writes one JPEG image to stdout.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// defaultTimeout bounds a single capture invocation.
const defaultTimeout = 10 * time.Second

// Options configures the capture command.
type Options struct {
	// Argv is the capture command and its arguments. The command must write
	// a single JPEG frame to stdout and exit.
	Argv []string
	// Timeout bounds one capture. Zero selects the default.
	Timeout time.Duration
}

// Client runs the capture command on demand. The camera device itself is
// owned by the external command, so Client holds no hardware state.
type Client struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// New validates the capture command configuration.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if len(opts.Argv) == 0 {
		return nil, fmt.Errorf("capture command argv cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		argv:    append([]string(nil), opts.Argv...),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Probe verifies that the capture command is resolvable without touching the
// camera hardware.
func (c *Client) Probe(_ context.Context) error {
	if _, err := exec.LookPath(c.argv[0]); err != nil {
		return fmt.Errorf("capture command not found in PATH: %s", c.argv[0])
	}
	return nil
}

// Capture runs the capture command and returns the frame bytes from stdout.
func (c *Client) Capture(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		trimmed := strings.TrimSpace(stderr.String())
		if trimmed == "" {
			return nil, fmt.Errorf("capture command failed: %w", err)
		}
		return nil, fmt.Errorf("capture command failed: %w: %s", err, trimmed)
	}

	frame := stdout.Bytes()
	if len(frame) == 0 {
		return nil, fmt.Errorf("capture command produced no frame data")
	}

	c.logger.Debug("frame captured",
		"bytes", len(frame),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return frame, nil
}
