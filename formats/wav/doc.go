// SPDX-License-Identifier: EPL-2.0

// Package wav reads integer PCM WAV files and writes 16-bit PCM WAV files.
//
// # Decoding
//
// Decoder is built on github.com/go-audio/wav, so non-canonical files with
// extra chunks (LIST, JUNK, fact) decode fine. 8, 16, 24 and 32 bit integer
// PCM is supported; samples come out as float32 in [-1.0, 1.0]:
//
//	src, err := wav.Decoder{}.Decode(file)
//	buf, err := audio.ReadAll(ctx, src)
//
// # Encoding a mix
//
// Encode turns a stereo audio.Buffer into a complete file in memory:
//
//	mixed, _ := audio.Mix(a, b, 0.7, 0.7)
//	data, err := wav.Encode(mixed)
//
// Samples are clamped to [-1,1] and quantized to 16 bits (negative values
// scale by 32768, the rest by 32767). The output always uses the canonical
// 44-byte header:
//
//	offset size field
//	0      4    "RIFF"
//	4      4    36 + data size
//	8      4    "WAVE"
//	12     4    "fmt "
//	16     4    16
//	20     2    1 (PCM)
//	22     2    channels
//	24     4    sample rate
//	28     4    byte rate
//	32     2    block align
//	34     2    16
//	36     4    "data"
//	40     4    data size
//
// Both size fields are 32 bits wide and wrap once the payload reaches 4 GiB.
//
// # Writing raw samples
//
// WriteWAV16 streams already quantized, interleaved int16 samples:
//
//	err := wav.WriteWAV16(file, 8000, 1, samples)
package wav
