// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize   = errors.New("dst size must be multiple of channels")
	ErrInvalidGain      = errors.New("gain must be a finite number")
	ErrInvalidBuffer    = errors.New("invalid audio buffer")
	ErrEmptyBuffer      = errors.New("both sources are empty")
	ErrEmptyBlob        = errors.New("audio blob is empty")
	ErrUnsupportedInput = errors.New("unsupported audio format")
)

// DecodeError reports a failure to turn a Blob into a Buffer. Source is the
// name of the offending blob; Err carries the backend diagnostic.
type DecodeError struct {
	Source string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("decode %q (%s): %v", e.Source, e.Format, e.Err)
	}
	return fmt.Sprintf("decode %q: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
