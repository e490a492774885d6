// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files with github.com/go-audio/aiff.
//
// 8, 16, 24 and 32 bit sample data is normalized to float32 in [-1.0, 1.0].
// The go-audio decoder needs an io.ReadSeeker; other readers are buffered in
// memory first.
package aiff
