// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavChunks = errors.New("unsupported WAV chunks")
	ErrOnlyPCMSupported     = errors.New("only integer PCM WAV supported")
	ErrUnsupportedBitDepth  = errors.New("unsupported WAV bit depth")
	// ErrEncoding means the buffer handed to the encoder breaks its layout
	// contract (channel count or ragged channels).
	ErrEncoding = errors.New("wav encoding")
)
