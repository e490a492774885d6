// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// win holds source frames idx-1, idx, idx+1 and idx+2. Frames outside
	// the stream repeat the nearest edge frame.
	win     [4][]float32
	idx     int
	pos     float64 // fraction between win[1] and win[2]
	read    int     // frames pulled from src so far
	started bool
	eof     bool

	srcBuf []float32

	// One-pole low-pass state, only used when downsampling
	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       float64(src.SampleRate()) / float64(dstRate),
		channels:    channels,
		srcBuf:      make([]float32, channels),
		filterState: make([]float32, channels),
	}

	// Cutoff is not tuned; a proper FIR would do better
	if r.ratio > 1.0 {
		r.useFilter = true
		r.filterAlpha = 0.5
	}

	for i := range r.win {
		r.win[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampler source: %w", err)
	}
	return nil
}

// pull reads the next source frame into dst. ok is false once the source is
// exhausted.
func (r *Resampler) pull(dst []float32) (ok bool, err error) {
	for empty := 0; !r.eof; {
		n, err := r.src.ReadSamples(r.srcBuf)
		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("resampler read: %w", err)
		}

		if n == r.channels {
			if r.read == 0 {
				copy(r.filterState, r.srcBuf)
			}
			copy(dst, r.srcBuf)
			r.lowPass(dst)
			r.read++
			return true, nil
		}

		empty++
		if empty >= maxEmptyReads {
			return false, io.ErrNoProgress
		}
	}

	return false, nil
}

func (r *Resampler) lowPass(frame []float32) {
	if !r.useFilter {
		return
	}
	for c := range frame {
		// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
		frame[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
		r.filterState[c] = frame[c]
	}
}

func (r *Resampler) start() error {
	r.started = true

	ok, err := r.pull(r.win[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.win[0], r.win[1])

	for k := 2; k < len(r.win); k++ {
		ok, err := r.pull(r.win[k])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.win[k], r.win[k-1])
		}
	}

	return nil
}

// advance slides the window one source frame forward.
func (r *Resampler) advance() error {
	first := r.win[0]
	copy(r.win[:], r.win[1:])
	r.win[3] = first
	r.idx++

	ok, err := r.pull(r.win[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.win[3], r.win[2])
	}

	return nil
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.started {
		if err := r.start(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if r.eof && r.idx >= r.read {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		utils.InterpolateFrame(out, r.win[0], r.win[1], r.win[2], r.win[3], alpha)

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
