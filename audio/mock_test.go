// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// genSource produces frames from fn until total frames were read.
type genSource struct {
	rate, channels int
	total, pos     int
	fn             func(frame, channel int) float32
}

func newMockSource(rate, channels, total int, fn func(frame, channel int) float32) *genSource {
	return &genSource{rate: rate, channels: channels, total: total, fn: fn}
}

func newConstantSource(rate, channels, total int, v float32) *genSource {
	return newMockSource(rate, channels, total, func(int, int) float32 { return v })
}

func newSilentSource(rate, channels, total int) *genSource {
	return newConstantSource(rate, channels, total, 0)
}

func newSineSource(rate, channels, total int, freq float64) *genSource {
	return newMockSource(rate, channels, total, func(frame, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(frame) / float64(rate)))
	})
}

func (g *genSource) SampleRate() int { return g.rate }
func (g *genSource) Channels() int   { return g.channels }
func (g *genSource) Close() error    { return nil }

func (g *genSource) ReadSamples(dst []float32) (int, error) {
	if g.pos >= g.total {
		return 0, io.EOF
	}

	frames := min(len(dst)/g.channels, g.total-g.pos)

	for f := range frames {
		for c := range g.channels {
			dst[f*g.channels+c] = g.fn(g.pos+f, c)
		}
	}
	g.pos += frames

	n := frames * g.channels
	if g.pos == g.total {
		return n, io.EOF
	}
	return n, nil
}
