package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
)

func filled(name string, rate float64, values ...float64) *channel.Channel {
	c := channel.New(name, rate, 0)
	c.AddSamples(values...)
	return c
}

func TestSaveWAVInterleavesNewestHistory(t *testing.T) {
	t.Parallel()

	mc := channel.NewMultiChannel(
		filled("l", 8000, 0.25, 0.5, -0.5, 1),
		filled("r", 8000, 2, -2, 0),
	)
	path := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, SaveWAV(path, mc, 16))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, 8000, buf.Format.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
	// Left drops its oldest sample; right is clipped to full scale.
	assert.Equal(t, []int{16384, 32767, -16384, -32767, 32767, 0}, buf.Data)
}

func TestWriteWAVRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mc       *channel.MultiChannel
		bitDepth int
		want     error
	}{
		{"empty", channel.NewMultiChannel(), 16, ErrNoChannels},
		{"bit depth", channel.NewMultiChannel(filled("a", 100, 0)), 12, ErrBitDepth},
		{"no rate", channel.NewMultiChannel(filled("a", 0, 0)), 16, ErrInvalidRate},
		{"mixed rates", channel.NewMultiChannel(filled("a", 100, 0), filled("b", 50, 0)), 16, channel.ErrRateMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.wav")
			require.ErrorIs(t, SaveWAV(path, tt.mc, tt.bitDepth), tt.want)
		})
	}
}
