package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBytesToInt16LittleEndian(t *testing.T) {
	t.Parallel()

	samples := bytesToInt16([]byte{0x01, 0x00, 0xff, 0x7f, 0x00, 0x80, 0xaa})
	require.Equal(t, []int16{1, 32767, -32768}, samples)
}

func TestSynthesizeEarconShapesEnvelope(t *testing.T) {
	t.Parallel()

	pcm := synthesizeEarcon([]toneSpec{
		{frequencyHz: 440, duration: 50 * time.Millisecond, volume: 0.2},
	})
	require.NotEmpty(t, pcm)
	require.Zero(t, pcm[0])

	peak := int16(0)
	for _, s := range pcm {
		if s > peak {
			peak = s
		}
	}
	require.Greater(t, peak, int16(3000))
	require.Less(t, peak, int16(8000))
}

func TestSynthesizeEarconInsertsGapBetweenTones(t *testing.T) {
	t.Parallel()

	one := synthesizeEarcon([]toneSpec{
		{frequencyHz: 440, duration: 40 * time.Millisecond, volume: 0.2},
	})
	two := synthesizeEarcon([]toneSpec{
		{frequencyHz: 440, duration: 40 * time.Millisecond, volume: 0.2},
		{frequencyHz: 660, duration: 40 * time.Millisecond, volume: 0.2},
	})
	require.Greater(t, len(two), 2*len(one))
}

func TestSamplesForDuration(t *testing.T) {
	t.Parallel()

	require.Zero(t, samplesForDuration(0))
	require.Equal(t, earconSampleRate, samplesForDuration(time.Second))
}
