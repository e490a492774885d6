// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"math"
)

// MixChannels is the fixed channel count of a mix.
const MixChannels = 2

// Mix sums a and b into a new stereo buffer:
//
//	out[c][i] = a[c][i]*gainA + b[c][i]*gainB
//
// The result runs at the higher of the two sample rates and is as long as the
// longer input; the shorter input contributes silence past its end. Mono
// inputs feed both output channels. Samples are summed positionally without
// resampling (see Conform) and are not clipped, so values outside [-1,1] are
// left for the encoder to clamp.
//
// Gains are used as given, including values outside [0,1]. Non-finite gains
// yield ErrInvalidGain. Mixing one empty input is valid; two empty inputs
// yield ErrEmptyBuffer.
func Mix(a, b *Buffer, gainA, gainB float64) (*Buffer, error) {
	if err := CheckGain(gainA); err != nil {
		return nil, fmt.Errorf("gain A: %w", err)
	}
	if err := CheckGain(gainB); err != nil {
		return nil, fmt.Errorf("gain B: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("source A: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("source B: %w", err)
	}

	lenA, lenB := a.FrameCount(), b.FrameCount()
	if lenA == 0 && lenB == 0 {
		return nil, ErrEmptyBuffer
	}

	out := NewBuffer(max(a.SampleRate, b.SampleRate), MixChannels, max(lenA, lenB))

	// accumulate in float64; gains past the float32 range saturate to ±Inf
	for c := range MixChannels {
		dst := out.Channels[c]
		srcA := a.Channel(c)
		srcB := b.Channel(c)

		for i := range dst {
			var v float64
			if i < len(srcA) {
				v = float64(srcA[i]) * gainA
			}
			if i < len(srcB) {
				v += float64(srcB[i]) * gainB
			}
			dst[i] = float32(v)
		}
	}

	return out, nil
}

// Conform returns buf at sampleRate, resampling with cubic interpolation when
// the rates differ. buf itself is returned unchanged when they match.
func Conform(ctx context.Context, buf *Buffer, sampleRate int) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: target rate %d", ErrInvalidBuffer, sampleRate)
	}
	if buf.SampleRate == sampleRate || buf.FrameCount() == 0 {
		return buf, nil
	}

	out, err := ReadAll(ctx, NewResampler(buf.Source(), sampleRate))
	if err != nil {
		return nil, fmt.Errorf("resample %d Hz to %d Hz: %w", buf.SampleRate, sampleRate, err)
	}

	return out, nil
}

// CheckGain reports ErrInvalidGain for NaN and infinite gains. Any finite
// gain is accepted.
func CheckGain(g float64) error {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidGain, g)
	}
	return nil
}
