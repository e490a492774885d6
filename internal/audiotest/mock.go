// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the pipeline tests.
package audiotest

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/wav"
)

// MockSource generates audio data for testing. It implements audio.Source.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel)
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) float32

	// Err, when set, is returned instead of io.EOF once the samples run out.
	Err    error
	Closed bool
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) Close() error    { m.Closed = true; return nil }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		if m.Err != nil {
			return 0, m.Err
		}
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalSamples-m.generated)
	for frame := range frames {
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(m.generated+frame, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalSamples && m.Err == nil {
		return frames * m.channels, io.EOF
	}
	return frames * m.channels, nil
}

// Tone returns frames of an interleaved 16-bit sine at half scale. Every
// channel carries the same signal.
func Tone(sampleRate, channels, frames int, freq float64) []int16 {
	out := make([]int16, 0, frames*channels)
	for i := range frames {
		v := int16(16383 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for range channels {
			out = append(out, v)
		}
	}
	return out
}

// WAVBlob wraps interleaved samples in a 16-bit WAV file.
func WAVBlob(tb testing.TB, name string, sampleRate, channels int, samples []int16) audio.Blob {
	tb.Helper()

	data := new(bytes.Buffer)
	if err := wav.WriteWAV16(data, sampleRate, channels, samples); err != nil {
		tb.Fatalf("build %s: %v", name, err)
	}
	return audio.Blob{Name: name, Data: data.Bytes()}
}

// ToneBlob is WAVBlob over Tone.
func ToneBlob(tb testing.TB, name string, sampleRate, channels, frames int, freq float64) audio.Blob {
	tb.Helper()
	return WAVBlob(tb, name, sampleRate, channels, Tone(sampleRate, channels, frames, freq))
}

// StaticDecoder ignores its input and hands out the source built by New.
type StaticDecoder struct {
	New func() audio.Source
	Err error
}

func (d StaticDecoder) Decode(io.Reader) (audio.Source, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.New(), nil
}
