// SPDX-License-Identifier: EPL-2.0

// Package audio holds the in-memory audio model and the processing steps
// that operate on it: decoding blobs into buffers, mixing two buffers, and
// optional sample rate conversion.
//
// # Buffers
//
// A Buffer is a sample rate plus one []float32 per channel, every channel
// the same length. Samples are nominally in [-1.0, 1.0], but nothing in this
// package clips them; values outside that range survive until encoding.
//
// # Decoding
//
// Decoders register with a Registry under a format name and optional
// aliases. Decode picks a decoder by content signature first and falls back
// to the blob's file extension:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	buf, err := audio.Decode(ctx, reg, audio.Blob{Name: "a.wav", Data: data})
//
// Every decode failure comes back as a *DecodeError naming the blob.
//
// # Mixing
//
// Mix sums two buffers into a stereo buffer with per-source gains:
//
//	out, err := audio.Mix(a, b, 0.7, 0.7)
//
// The result runs at the higher of the two sample rates and is as long as
// the longer input; the shorter input contributes silence past its end.
// A mono input feeds both output channels. Sample rates are not converted;
// use Conform first when that matters.
//
// # Resampling
//
// The Resampler changes the sample rate of a Source using cubic
// interpolation, and Conform applies it to a whole Buffer:
//
//	b, err = audio.Conform(ctx, b, a.SampleRate)
//
// # Streaming
//
// Source implementations return io.EOF when no more data is available,
// possibly together with the final samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // use buf[:n]
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
