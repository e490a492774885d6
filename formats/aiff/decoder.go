// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audmix/audio"
)

var (
	ErrNotAiffFile         = errors.New("not an AIFF file")
	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")
	ErrNoAudio             = errors.New("AIFF file has no sound data")
)

// aiffReader is the part of aiff.Decoder the source needs, split out for
// testing.
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        aiffReader
	sampleRate int
	channels   int
	scale      float32
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, len(dst))}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read aiff pcm: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	// AIFF samples are big-endian two's complement at every depth
	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) / s.scale
	}

	if errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, nil
}

// fullScale returns the magnitude of the most negative sample at bitDepth.
func fullScale(bitDepth int) (float32, bool) {
	switch bitDepth {
	case 8:
		return 128.0, true
	case 16:
		return 32768.0, true
	case 24:
		return 8388608.0, true
	case 32:
		return 2147483648.0, true
	}
	return 0, false
}

// Decoder reads uncompressed AIFF files of 8, 16, 24 or 32 bits.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio needs to seek between chunks
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	scale, ok := fullScale(int(dec.BitDepth))
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, ErrNoAudio
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      scale,
	}, nil
}
