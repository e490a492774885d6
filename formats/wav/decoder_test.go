// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// createWAVFile builds a WAV file by hand. extra, when set, is inserted as a
// JUNK chunk between fmt and data.
func createWAVFile(sampleRate, channels, bitsPerSample int, audioFormat uint16, pcm []byte, extra []byte) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * bitsPerSample / 8)
	riffSize := uint32(4 + 24 + 8 + len(pcm))
	if extra != nil {
		riffSize += uint32(8 + len(extra))
	}

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, audioFormat)
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	if extra != nil {
		buf.WriteString("JUNK")
		binary.Write(buf, binary.LittleEndian, uint32(len(extra)))
		buf.Write(extra)
	}

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func readAll(t *testing.T, data []byte) ([]float32, int, int) {
	t.Helper()

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	var out []float32
	buf := make([]float32, 64)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	return out, src.SampleRate(), src.Channels()
}

func TestDecoder_ValidWAVFile(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 16, 1, pcm16(0, 16384, -16384, math.MinInt16), nil)

	samples, rate, channels := readAll(t, data)
	if rate != 8000 || channels != 1 {
		t.Errorf("format = %d Hz x %d, want 8000 Hz x 1", rate, channels)
	}

	want := []float32{0, 0.5, -0.5, -1}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestDecoder_ReadsEncoderOutput(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	if err := WriteWAV16(buf, 44100, 2, []int16{100, -100, 200, -200}); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	samples, rate, channels := readAll(t, buf.Bytes())
	if rate != 44100 || channels != 2 {
		t.Errorf("format = %d Hz x %d, want 44100 Hz x 2", rate, channels)
	}
	if len(samples) != 4 {
		t.Errorf("got %d samples, want 4", len(samples))
	}
}

func TestDecoder_SkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	data := createWAVFile(16000, 1, 16, 1, pcm16(1000, 2000), make([]byte, 28))

	samples, _, _ := readAll(t, data)
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if want := float32(1000) / 32768; samples[0] != want {
		t.Errorf("sample 0 = %v, want %v", samples[0], want)
	}
}

func TestDecoder_8Bit(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 8, 1, []byte{128, 255, 0, 192}, nil)

	samples, _, _ := readAll(t, data)
	want := []float32{0, 127.0 / 128, -1, 0.5}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"not wav", []byte("This is not a WAV file at all, just some text."), ErrNotWavFile},
		{"empty", nil, ErrNotWavFile},
		{"float format", createWAVFile(8000, 1, 32, 3, make([]byte, 8), nil), ErrOnlyPCMSupported},
		{"12 bit", createWAVFile(8000, 1, 12, 1, make([]byte, 4), nil), ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 2, 16, 1, pcm16(1, 2, 3, 4), nil)

	// io.MultiReader hides the Seek method of bytes.Reader
	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
}

type mockPCMReader struct {
	samples []int
	offset  int
	err     error
}

func (m *mockPCMReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func TestSource_EOFOnEmptyRead(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockPCMReader{samples: []int{16384, -16384}}, sampleRate: 8000, channels: 1, bitDepth: 16}

	buf := make([]float32, 4)
	n, err := src.ReadSamples(buf)
	if err != nil || n != 2 {
		t.Fatalf("first ReadSamples() = %d, %v, want 2, nil", n, err)
	}

	n, err = src.ReadSamples(buf)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("second ReadSamples() = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestSource_PropagatesErrors(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockPCMReader{err: io.ErrUnexpectedEOF}, sampleRate: 8000, channels: 1, bitDepth: 16}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_EmptyDst(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockPCMReader{samples: []int{1}}, sampleRate: 8000, channels: 1, bitDepth: 16}

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v, want 0, nil", n, err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v, depth int
		want     float32
	}{
		{128, 8, 0},
		{0, 8, -1},
		{-32768, 16, -1},
		{16384, 16, 0.5},
		{-8388608, 24, -1},
		{4194304, 24, 0.5},
		{-2147483648, 32, -1},
	}

	for _, tt := range tests {
		if got := normalize(tt.v, tt.depth); got != tt.want {
			t.Errorf("normalize(%d, %d) = %v, want %v", tt.v, tt.depth, got, tt.want)
		}
	}
}
