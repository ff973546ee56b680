// Package ocr extracts text from captured frames by piping them through the
// tesseract command line tool.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultBinary   = "tesseract"
	defaultLanguage = "eng"
	defaultTimeout  = 15 * time.Second
)

// Options configures the tesseract invocation.
type Options struct {
	// Binary is the tesseract executable. Empty selects "tesseract".
	Binary string
	// Language is the recognition language passed with -l. Empty selects "eng".
	Language string
	// Timeout bounds one extraction. Zero selects the default.
	Timeout time.Duration
}

// Extractor runs tesseract in stdin/stdout mode, one process per frame.
type Extractor struct {
	binary   string
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// New builds an extractor with defaults applied.
func New(opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	binary := opts.Binary
	if binary == "" {
		binary = defaultBinary
	}
	language := opts.Language
	if language == "" {
		language = defaultLanguage
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{
		binary:   binary,
		language: language,
		timeout:  timeout,
		logger:   logger,
	}
}

// ExtractText feeds the frame to tesseract on stdin and returns the trimmed
// recognized text. An empty result means no text was found; the caller
// decides whether that is worth announcing.
func (e *Extractor) ExtractText(ctx context.Context, frame []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, "stdin", "stdout", "-l", e.language)
	cmd.Stdin = bytes.NewReader(frame)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		trimmed := strings.TrimSpace(stderr.String())
		if trimmed == "" {
			return "", fmt.Errorf("run %s: %w", e.binary, err)
		}
		return "", fmt.Errorf("run %s: %w: %s", e.binary, err, trimmed)
	}

	text := strings.TrimSpace(stdout.String())
	e.logger.Debug("ocr pass complete",
		"frame_bytes", len(frame),
		"text_chars", len(text),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return text, nil
}
