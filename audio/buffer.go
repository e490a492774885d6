// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Buffer is a fully materialized, de-interleaved signal. Every entry of
// Channels holds exactly FrameCount samples.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	b := &Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channels),
	}
	for c := range b.Channels {
		b.Channels[c] = make([]float32, frames)
	}
	return b
}

func (b *Buffer) ChannelCount() int { return len(b.Channels) }

func (b *Buffer) FrameCount() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Channel returns channel c, reusing the last channel when c is past the
// layout so that mono material feeds both sides of a stereo mix.
func (b *Buffer) Channel(c int) []float32 {
	return b.Channels[min(c, len(b.Channels)-1)]
}

// Validate checks the structural invariants of b.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	}
	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}

	frames := len(b.Channels[0])
	for c, ch := range b.Channels {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidBuffer, c, len(ch), frames)
		}
	}

	return nil
}

// Source exposes b as an interleaved stream, which lets buffers flow through
// stream processors such as Resampler.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.ChannelCount() }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := s.buf.ChannelCount()
	if channels == 0 || s.pos >= s.buf.FrameCount() {
		return 0, io.EOF
	}
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := min(len(dst)/channels, s.buf.FrameCount()-s.pos)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = s.buf.Channels[c][s.pos+f]
		}
	}
	s.pos += frames

	if s.pos >= s.buf.FrameCount() {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}
