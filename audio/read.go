// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	readChunkFrames = 4096
	maxEmptyReads   = 100
)

// ReadAll drains src into a Buffer. Trailing samples that do not complete a
// frame are dropped. ctx is checked between chunks.
func ReadAll(ctx context.Context, src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels < 1 || src.SampleRate() < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidBuffer, channels, src.SampleRate())
	}

	out := &Buffer{
		SampleRate: src.SampleRate(),
		Channels:   make([][]float32, channels),
	}
	buf := make([]float32, readChunkFrames*channels)

	// next is the channel the next interleaved value belongs to; it carries
	// over between reads that end mid-frame.
	next := 0
	empty := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			out.Channels[next] = append(out.Channels[next], v)
			next = (next + 1) % channels
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, io.ErrNoProgress
			}
			continue
		}
		empty = 0
	}

	frames := len(out.Channels[channels-1])
	for c := range out.Channels {
		out.Channels[c] = out.Channels[c][:frames:frames]
	}

	return out, nil
}

// Decode turns blob into a Buffer using the decoder reg resolves for it.
// Every failure is reported as a *DecodeError.
func Decode(ctx context.Context, reg *Registry, blob Blob) (*Buffer, error) {
	if len(blob.Data) == 0 {
		return nil, &DecodeError{Source: blob.Name, Err: ErrEmptyBlob}
	}

	dec, format, ok := reg.Lookup(blob)
	if !ok {
		return nil, &DecodeError{Source: blob.Name, Format: format, Err: ErrUnsupportedInput}
	}

	// bytes.Reader is also an io.ReadSeeker, which the go-audio backends want
	src, err := dec.Decode(bytes.NewReader(blob.Data))
	if err != nil {
		return nil, &DecodeError{Source: blob.Name, Format: format, Err: err}
	}
	defer src.Close()

	buf, err := ReadAll(ctx, src)
	if err != nil {
		return nil, &DecodeError{Source: blob.Name, Format: format, Err: err}
	}

	return buf, nil
}
