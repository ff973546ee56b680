// Package detect talks to a local object detection inference service over
// HTTP. The service accepts a JPEG frame and returns labeled detections with
// confidence scores.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultMinConfidence = 0.5
	defaultTimeout       = 10 * time.Second
)

// Options configures the inference service client.
type Options struct {
	// Endpoint receives POSTed JPEG frames, e.g. http://127.0.0.1:8765/v1/detect.
	Endpoint string
	// HealthEndpoint is probed by Health. Empty disables the probe.
	HealthEndpoint string
	// MinConfidence drops detections scored below it. Zero selects 0.5.
	MinConfidence float64
	// Timeout bounds one inference round trip. Zero selects the default.
	Timeout time.Duration
}

// Detection is one labeled object reported by the service.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
}

// Client posts frames to the inference service and aggregates label counts.
type Client struct {
	endpoint       string
	healthEndpoint string
	minConfidence  float64
	httpClient     *http.Client
	logger         *slog.Logger
}

// New validates the endpoint and builds a client with defaults applied.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("detect endpoint cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	minConfidence := opts.MinConfidence
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:       opts.Endpoint,
		healthEndpoint: opts.HealthEndpoint,
		minConfidence:  minConfidence,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}, nil
}

// Detect posts the frame and returns counts per label, keeping only
// detections at or above the confidence threshold.
func (c *Client) Detect(ctx context.Context, frame []byte) (map[string]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post frame to inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	counts := make(map[string]int)
	dropped := 0
	for _, d := range decoded.Detections {
		if d.Label == "" {
			continue
		}
		if d.Confidence < c.minConfidence {
			dropped++
			continue
		}
		counts[d.Label]++
	}

	c.logger.Debug("detection pass complete",
		"labels", len(counts),
		"dropped_low_confidence", dropped,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return counts, nil
}

// Health probes the configured health endpoint. A client without one always
// reports healthy.
func (c *Client) Health(ctx context.Context) error {
	if c.healthEndpoint == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthEndpoint, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("inference service health returned %d", resp.StatusCode)
	}
	return nil
}
