// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so every Source returned here reports
// two channels; mono files come out with both channels identical.
//
//	src, err := mp3.Decoder{}.Decode(bytes.NewReader(data))
//	if err != nil {
//	    // not an MP3 stream
//	}
//	buf, err := audio.ReadAll(ctx, src)
package mp3
