// Package speech renders text to audible output through the Piper TTS engine
// and PulseAudio playback.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const synthesisTimeout = 20 * time.Second

// Piper renders speech by piping text through the piper binary and playing
// the raw PCM it produces. Render is invoked only from the audio arbiter's
// worker, one utterance at a time.
type Piper struct {
	binary     string
	modelPath  string
	sampleRate int
	logger     *slog.Logger
}

// NewPiper constructs a renderer for the given piper binary and voice model.
func NewPiper(binary, modelPath string, sampleRate int, logger *slog.Logger) *Piper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Piper{
		binary:     binary,
		modelPath:  modelPath,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Render synthesizes text and blocks until playback completes or ctx is
// cancelled. A synthesis failure plays the error earcon so the wearer hears
// that feedback was attempted.
func (p *Piper) Render(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	samples, err := p.synthesize(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if cueErr := playPCM(ctx, errorEarconPCM, earconSampleRate); cueErr != nil {
			p.logger.Warn("error earcon playback failed", "error", cueErr.Error())
		}
		return err
	}

	return playPCM(ctx, samples, p.sampleRate)
}

// PlayReadyCue emits the startup earcon directly; it runs before the arbiter
// worker speaks its first phrase.
func (p *Piper) PlayReadyCue(ctx context.Context) error {
	return playPCM(ctx, readyEarconPCM, earconSampleRate)
}

func (p *Piper) synthesize(ctx context.Context, text string) ([]int16, error) {
	synthCtx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	cmd := exec.CommandContext(synthCtx, p.binary,
		"--model", p.modelPath,
		"--output-raw",
	)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper synthesis: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	p.logger.Debug("speech synthesized",
		"chars", len(text),
		"pcm_bytes", stdout.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return bytesToInt16(stdout.Bytes()), nil
}
