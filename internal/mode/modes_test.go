package mode

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
)

type fakeCamera struct {
	probeErr   error
	captureErr error
	frame      []byte
	captures   atomic.Int64
}

func (c *fakeCamera) Probe(context.Context) error { return c.probeErr }

func (c *fakeCamera) Capture(context.Context) ([]byte, error) {
	c.captures.Add(1)
	if c.captureErr != nil {
		return nil, c.captureErr
	}
	return c.frame, nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	texts []string
	errs  []error
	calls int
}

func (e *fakeExtractor) ExtractText(context.Context, []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.calls
	e.calls++
	if i < len(e.errs) && e.errs[i] != nil {
		return "", e.errs[i]
	}
	if i >= len(e.texts) {
		return "", nil
	}
	return e.texts[i], nil
}

type fakeDetector struct {
	counts map[string]int
	err    error
}

func (d *fakeDetector) Detect(context.Context, []byte) (map[string]int, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.counts, nil
}

type fakeRangerOpener struct {
	openErr  error
	readings []float64
	index    atomic.Int64
	closed   atomic.Bool
}

func (o *fakeRangerOpener) OpenRanger(context.Context) (Ranger, func(), error) {
	if o.openErr != nil {
		return nil, nil, o.openErr
	}
	return o, func() { o.closed.Store(true) }, nil
}

func (o *fakeRangerOpener) MeasureDistanceCM(context.Context) (float64, error) {
	i := int(o.index.Add(1)) - 1
	if i >= len(o.readings) {
		i = len(o.readings) - 1
	}
	return o.readings[i], nil
}

func TestModeKindCycle(t *testing.T) {
	t.Parallel()

	require.Equal(t, Time, Idle.Next())
	require.Equal(t, TextReading, Time.Next())
	require.Equal(t, ObjectDetection, TextReading.Next())
	require.Equal(t, Distance, ObjectDetection.Next())
	require.Equal(t, Idle, Distance.Next())
}

func TestModeKindSpokenNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, "idle mode", Idle.Spoken())
	require.Equal(t, "time mode", Time.Spoken())
	require.Equal(t, "text recognition and reading mode", TextReading.Spoken())
	require.Equal(t, "object detection mode", ObjectDetection.Spoken())
	require.Equal(t, "distance measurements mode", Distance.Spoken())
}

func TestTimeActivityAnnouncesImmediately(t *testing.T) {
	speaker := &fakeSpeaker{}
	clock := func() time.Time {
		return time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	}

	a := NewTime(TimeOptions{Interval: time.Hour, Layout: "03:04 PM", Clock: clock}, speaker, nil)
	require.NoError(t, a.Start())
	defer stopAndWait(t, a)

	waitFor(t, func() bool { return speaker.count() >= 1 })
	got := speaker.all()[0]
	require.Equal(t, "The current time is 09:30 AM", got.text)
	require.Equal(t, arbiter.Normal, got.priority)
}

func TestTextReadingSpeaksOnlyNonEmptyText(t *testing.T) {
	speaker := &fakeSpeaker{}
	camera := &fakeCamera{frame: []byte("jpeg")}
	extractor := &fakeExtractor{texts: []string{"", "  \n ", "STOP  SIGN"}}

	a := NewTextReading(TextReadingOptions{Interval: time.Millisecond}, camera, extractor, speaker, nil)
	require.NoError(t, a.Start())
	defer stopAndWait(t, a)

	waitFor(t, func() bool { return speaker.count() >= 1 })
	got := speaker.all()[0]
	require.Equal(t, "I can see the following text: STOP SIGN", got.text)
	require.Equal(t, arbiter.Normal, got.priority)
}

func TestTextReadingTransientOCRFailureKeepsRunning(t *testing.T) {
	speaker := &fakeSpeaker{}
	camera := &fakeCamera{frame: []byte("jpeg")}
	extractor := &fakeExtractor{
		texts: []string{"", "recovered"},
		errs:  []error{errors.New("tesseract crashed"), nil},
	}

	a := NewTextReading(TextReadingOptions{Interval: time.Millisecond}, camera, extractor, speaker, nil)
	require.NoError(t, a.Start())
	defer stopAndWait(t, a)

	waitFor(t, func() bool { return speaker.count() >= 1 })
	require.True(t, a.Running())
	require.Equal(t, "I can see the following text: recovered", speaker.all()[0].text)
}

func TestTextReadingCameraUnavailableFailsStart(t *testing.T) {
	speaker := &fakeSpeaker{}
	camera := &fakeCamera{probeErr: errors.New("device busy")}
	extractor := &fakeExtractor{}

	a := NewTextReading(TextReadingOptions{Interval: time.Millisecond}, camera, extractor, speaker, nil)
	err := a.Start()
	require.Error(t, err)
	require.Contains(t, err.Error(), "camera unavailable")
	require.False(t, a.Running())
	require.Zero(t, camera.captures.Load())
}

func TestObjectDetectionSpeaksAggregatedCounts(t *testing.T) {
	speaker := &fakeSpeaker{}
	camera := &fakeCamera{frame: []byte("jpeg")}
	detector := &fakeDetector{counts: map[string]int{"person": 1, "chair": 2}}

	a := NewObjectDetection(ObjectDetectionOptions{Interval: time.Millisecond}, camera, detector, speaker, nil)
	require.NoError(t, a.Start())
	defer stopAndWait(t, a)

	waitFor(t, func() bool { return speaker.count() >= 1 })
	require.Equal(t, "I can see two chairs, one person", speaker.all()[0].text)
}

func TestObjectDetectionAnnouncesEmptyScene(t *testing.T) {
	speaker := &fakeSpeaker{}
	camera := &fakeCamera{frame: []byte("jpeg")}
	detector := &fakeDetector{counts: map[string]int{}}

	a := NewObjectDetection(ObjectDetectionOptions{Interval: time.Millisecond}, camera, detector, speaker, nil)
	require.NoError(t, a.Start())
	defer stopAndWait(t, a)

	waitFor(t, func() bool { return speaker.count() >= 1 })
	require.Equal(t, "No objects detected", speaker.all()[0].text)
}

func TestDistanceFirstReadingAlwaysAnnounced(t *testing.T) {
	speaker := &fakeSpeaker{}
	opener := &fakeRangerOpener{readings: []float64{150}}

	a := NewDistance(DistanceOptions{Interval: time.Hour, WarningCM: 100}, opener, speaker, nil)
	require.NoError(t, a.Start())
	defer stopAndWait(t, a)

	waitFor(t, func() bool { return speaker.count() >= 1 })
	got := speaker.all()[0]
	require.Equal(t, "Initial distance reading: 150.0 centimeters", got.text)
	require.Equal(t, arbiter.Normal, got.priority)
}

func TestDistanceWarnsBelowThresholdWithInterrupt(t *testing.T) {
	speaker := &fakeSpeaker{}
	opener := &fakeRangerOpener{readings: []float64{150, 80}}

	a := NewDistance(DistanceOptions{Interval: time.Millisecond, WarningCM: 100}, opener, speaker, nil)
	require.NoError(t, a.Start())
	defer stopAndWait(t, a)

	waitFor(t, func() bool { return speaker.count() >= 2 })
	warning := speaker.all()[1]
	require.Equal(t, "Warning! Distance is 80.0 centimeters", warning.text)
	require.Equal(t, arbiter.Interrupt, warning.priority)
}

func TestDistanceStaysQuietBeyondThreshold(t *testing.T) {
	speaker := &fakeSpeaker{}
	opener := &fakeRangerOpener{readings: []float64{150, 150, 150}}

	a := NewDistance(DistanceOptions{Interval: time.Millisecond, WarningCM: 100}, opener, speaker, nil)
	require.NoError(t, a.Start())

	waitFor(t, func() bool { return opener.index.Load() >= 3 })
	stopAndWait(t, a)

	for _, entry := range speaker.all()[1:] {
		require.False(t, strings.HasPrefix(entry.text, "Warning!"), "unexpected warning: %q", entry.text)
	}
	require.Len(t, speaker.all(), 1)
}

func TestDistanceSensorUnavailableFailsStart(t *testing.T) {
	speaker := &fakeSpeaker{}
	opener := &fakeRangerOpener{openErr: errors.New("no such device")}

	a := NewDistance(DistanceOptions{Interval: time.Millisecond, WarningCM: 100}, opener, speaker, nil)
	err := a.Start()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ranging sensor unavailable")
	require.False(t, a.Running())
}

func TestDistanceClosesSensorOnStop(t *testing.T) {
	speaker := &fakeSpeaker{}
	opener := &fakeRangerOpener{readings: []float64{150}}

	a := NewDistance(DistanceOptions{Interval: time.Millisecond, WarningCM: 100}, opener, speaker, nil)
	require.NoError(t, a.Start())
	stopAndWait(t, a)
	require.True(t, opener.closed.Load())
}
