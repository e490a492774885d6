// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audmix/audio"
)

// go-mp3 always produces 16-bit little-endian stereo
const outputChannels = 2

// ErrNoAudio is returned for streams that hold no decodable frame.
var ErrNoAudio = errors.New("mp3 stream has no audio frames")

// mp3Reader is the part of gomp3.Decoder the source needs, split out for
// testing.
type mp3Reader interface {
	Read([]byte) (int, error)
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// odd trailing byte of the previous read
	carry    byte
	hasCarry bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outputChannels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	off := 0
	if s.hasCarry {
		s.buf[0] = s.carry
		s.hasCarry = false
		off = 1
	}

	n, err := s.dec.Read(s.buf[off:])
	n += off
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read mp3 frames: %w", err)
	}

	samples := n / 2
	if n%2 == 1 {
		s.carry = s.buf[n-1]
		s.hasCarry = true
	}

	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768.0
	}

	if errors.Is(err, io.EOF) {
		return samples, io.EOF
	}
	return samples, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoAudio
		}
		return nil, fmt.Errorf("open mp3 stream: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
