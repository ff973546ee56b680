package camera

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyArgv(t *testing.T) {
	t.Parallel()

	_, err := New(Options{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestProbeFailsForMissingBinary(t *testing.T) {
	t.Parallel()

	client, err := New(Options{Argv: []string{"definitely-not-a-real-capture-tool"}}, nil)
	require.NoError(t, err)

	err = client.Probe(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found in PATH")
}

func TestCaptureReturnsStdoutBytes(t *testing.T) {
	t.Parallel()

	client, err := New(Options{Argv: []string{"sh", "-c", "printf 'frame-bytes'"}}, nil)
	require.NoError(t, err)

	frame, err := client.Capture(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("frame-bytes"), frame)
}

func TestCaptureSurfacesStderrOnFailure(t *testing.T) {
	t.Parallel()

	client, err := New(Options{Argv: []string{"sh", "-c", "echo 'no camera detected' >&2; exit 1"}}, nil)
	require.NoError(t, err)

	_, err = client.Capture(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no camera detected")
}

func TestCaptureRejectsEmptyFrame(t *testing.T) {
	t.Parallel()

	client, err := New(Options{Argv: []string{"true"}}, nil)
	require.NoError(t, err)

	_, err = client.Capture(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no frame data")
}

func TestCaptureHonorsTimeout(t *testing.T) {
	t.Parallel()

	client, err := New(Options{
		Argv:    []string{"sh", "-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	started := time.Now()
	_, err = client.Capture(context.Background())
	require.Error(t, err)
	require.Less(t, time.Since(started), 2*time.Second)
}
