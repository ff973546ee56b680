package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptyContentYieldsBase(t *testing.T) {
	base := Default()

	cfg, warnings, err := Parse("", base)
	require.NoError(t, err)
	require.Equal(t, base, cfg)
	require.Empty(t, warnings)
}

func TestParseWhitespaceOnlyContentYieldsBase(t *testing.T) {
	base := Default()

	cfg, _, err := Parse("  \n\t  ", base)
	require.NoError(t, err)
	require.Equal(t, base, cfg)
}

func TestParseRejectsNonObjectContent(t *testing.T) {
	_, _, err := Parse("buttons.source = gpio\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "JSONC object")
}

func TestParseOverlaysOnlyPresentKeys(t *testing.T) {
	content := `{
  "time": { "interval_ms": 30000 },
  "detect": { "min_confidence": 0.7 }
}`

	cfg, _, err := Parse(content, Default())
	require.NoError(t, err)
	require.Equal(t, 30000, cfg.Time.IntervalMS)
	require.Equal(t, 0.7, cfg.Detect.MinConfidence)

	// Untouched sections keep their defaults.
	require.Equal(t, Default().Buttons, cfg.Buttons)
	require.Equal(t, Default().Speech, cfg.Speech)
	require.Equal(t, Default().Time.Layout, cfg.Time.Layout)
}

func TestParseCaptureCmdReparsedToArgv(t *testing.T) {
	content := `{
  "camera": { "capture_cmd": "libcamera-jpeg -n --timeout 1 -o -" }
}`

	cfg, _, err := Parse(content, Default())
	require.NoError(t, err)
	require.Equal(t, "libcamera-jpeg -n --timeout 1 -o -", cfg.Camera.CaptureCmd.Raw)
	require.Equal(t, []string{"libcamera-jpeg", "-n", "--timeout", "1", "-o", "-"}, cfg.Camera.CaptureCmd.Argv)
}

func TestParseInvalidCaptureCmdFails(t *testing.T) {
	content := `{
  "camera": { "capture_cmd": "oops \"unterminated" }
}`

	_, _, err := Parse(content, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "camera.capture_cmd")
}

func TestParseUnknownKeyFails(t *testing.T) {
	content := `{ "buttns": { "poll_ms": 10 } }`

	_, _, err := Parse(content, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestParseValidatesMergedResult(t *testing.T) {
	content := `{ "ultrasonic": { "warning_cm": -5 } }`

	_, _, err := Parse(content, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ultrasonic.warning_cm")
}
