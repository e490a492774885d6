// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio with github.com/jfreymuth/oggvorbis.
// The decoder already works in float32, so samples pass through without
// conversion.
package vorbis
