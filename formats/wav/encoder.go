// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// HeaderSize is the size of the canonical RIFF/WAVE header written here.
const HeaderSize = 44

const bytesPerSample = 2

// putHeader writes the canonical 44-byte PCM header. Both chunk sizes are
// 32-bit fields and wrap for payloads of 4 GiB and more.
func putHeader(header []byte, sampleRate, numChannels int, dataSize uint64) {
	size := uint32(dataSize)
	blockAlign := uint16(numChannels * bytesPerSample)

	// RIFF header (12 bytes)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+size)
	copy(header[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*uint32(blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bytesPerSample*8)

	// data chunk header (8 bytes)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], size)
}

// Encode serializes a stereo mix into a 16-bit PCM WAV file held in memory.
// Samples are clamped to [-1,1] and interleaved left, right.
func Encode(buf *audio.Buffer) ([]byte, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrEncoding)
	}
	if buf.ChannelCount() != audio.MixChannels {
		return nil, fmt.Errorf("%w: %d channels, want %d", ErrEncoding, buf.ChannelCount(), audio.MixChannels)
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	frames := buf.FrameCount()
	dataSize := uint64(frames) * audio.MixChannels * bytesPerSample

	out := make([]byte, HeaderSize+int(dataSize))
	putHeader(out[:HeaderSize], buf.SampleRate, audio.MixChannels, dataSize)

	left, right := buf.Channels[0], buf.Channels[1]
	pcm := out[HeaderSize:]
	for i := range frames {
		off := i * audio.MixChannels * bytesPerSample
		binary.LittleEndian.PutUint16(pcm[off:], uint16(utils.Float32ToInt16(left[i])))
		binary.LittleEndian.PutUint16(pcm[off+2:], uint16(utils.Float32ToInt16(right[i])))
	}

	return out, nil
}

// WriteWAV16 writes interleaved 16-bit PCM samples with numChannels channels
// at sampleRate to w.
func WriteWAV16(w io.Writer, sampleRate, numChannels int, samples []int16) error {
	if numChannels < 1 {
		return fmt.Errorf("%w: %d channels", ErrEncoding, numChannels)
	}
	if len(samples)%numChannels != 0 {
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames", ErrEncoding, len(samples), numChannels)
	}

	header := make([]byte, HeaderSize)
	putHeader(header, sampleRate, numChannels, uint64(len(samples))*bytesPerSample)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	// Write 8K samples at a time
	const chunkSize = 8192
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), chunkSize)*bytesPerSample)
	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*bytesPerSample]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write wav data: %w", err)
		}
	}

	return nil
}
