// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// Source is a decoded PCM stream.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs  map[string]Decoder
	aliases map[string]string

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs:  make(map[string]Decoder),
		aliases: make(map[string]string),
		mtx:     &sync.RWMutex{},
	}
}

// Register adds d under format. Extra names (usually file extensions such as
// "aif" or "oga") resolve to the same decoder.
func (r *Registry) Register(format string, d Decoder, aliases ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	format = strings.ToLower(format)
	r.codecs[format] = d
	for _, a := range aliases {
		r.aliases[strings.ToLower(a)] = format
	}
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	format = strings.ToLower(format)
	if canonical, ok := r.aliases[format]; ok {
		format = canonical
	}
	d, ok := r.codecs[format]
	return d, ok
}

// Lookup picks the decoder for blob. The content signature wins over the
// name so that mislabeled downloads still decode; the extension of
// blob.Name is the fallback.
func (r *Registry) Lookup(blob Blob) (Decoder, string, bool) {
	if format := Sniff(blob.Data); format != "" {
		if d, ok := r.Get(format); ok {
			return d, format, true
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(blob.Name), ".")
	if ext == "" {
		return nil, "", false
	}
	d, ok := r.Get(ext)
	return d, strings.ToLower(ext), ok
}

// Sniff reports the container format of data from its magic bytes, or "" if
// it is not recognized.
func Sniff(data []byte) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "wav"
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return "aiff"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		return "ogg"
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return "mp3"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return "mp3"
	}

	return ""
}
