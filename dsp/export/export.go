// Package export writes channel history to audio files.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/core"
)

const pcmFormat = 1

var (
	// ErrNoChannels is returned for an empty multichannel.
	ErrNoChannels = errors.New("export: no channels")
	// ErrInvalidRate is returned when the channels carry no usable rate.
	ErrInvalidRate = errors.New("export: invalid sample rate")
	// ErrBitDepth is returned for unsupported PCM bit depths.
	ErrBitDepth = errors.New("export: unsupported bit depth")
)

// WriteWAV encodes the retained history of every channel of mc as
// interleaved PCM. Channels are aligned on their newest sample and cut to
// the shortest history. Values are clipped to [-1, 1].
func WriteWAV(w io.WriteSeeker, mc *channel.MultiChannel, bitDepth int) error {
	if mc.Len() == 0 {
		return ErrNoChannels
	}
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}

	rate := int(math.Round(mc.SampleRate()))
	if rate <= 0 {
		return fmt.Errorf("%w: %g Hz", ErrInvalidRate, mc.SampleRate())
	}
	if err := mc.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	frames := mc.At(0).NumSamples()
	for _, c := range mc.Channels() {
		frames = min(frames, c.NumSamples())
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: mc.Len(), SampleRate: rate},
		Data:           interleave(mc, frames, bitDepth),
		SourceBitDepth: bitDepth,
	}

	enc := wav.NewEncoder(w, rate, bitDepth, mc.Len(), pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("export: write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("export: finalize header: %w", err)
	}
	return nil
}

// SaveWAV writes mc to the file at path.
func SaveWAV(path string, mc *channel.MultiChannel, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return WriteWAV(f, mc, bitDepth)
}

func interleave(mc *channel.MultiChannel, frames, bitDepth int) []int {
	scale := float64(int64(1)<<(bitDepth-1) - 1)
	n := mc.Len()
	data := make([]int, frames*n)
	history := make([]float64, frames)

	for k, c := range mc.Channels() {
		c.CopyRange(history, c.Counter()-int64(frames))
		for i, v := range history {
			data[i*n+k] = int(math.Round(core.Clamp(v, -1, 1) * scale))
		}
	}
	return data
}
