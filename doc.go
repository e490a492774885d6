// SPDX-License-Identifier: EPL-2.0

// Package audmix mixes two audio clips into a single stereo 16-bit PCM WAV
// file.
//
// The work is split across subpackages:
//   - audio holds the Buffer model, the decoder Registry, Mix and Conform
//   - formats/wav, formats/mp3, formats/vorbis and formats/aiff decode the
//     supported containers; formats/wav also encodes the result
//   - mixer runs the whole decode, mix, encode and persist pipeline
//   - store keeps downloads, recordings and mixes in a directory, an
//     S3-compatible bucket or memory
//
// # Quick Start
//
// NewRegistry returns a registry with every bundled decoder:
//
//	reg := audmix.NewRegistry()
//	a, _ := audio.Decode(ctx, reg, audio.Blob{Name: "voice.ogg", Data: voice})
//	b, _ := audio.Decode(ctx, reg, audio.Blob{Name: "music.mp3", Data: music})
//	mixed, _ := audio.Mix(a, b, 0.7, 0.7)
//	data, _ := wav.Encode(mixed)
//
// For the full pipeline with storage and stage-aware errors, use mixer:
//
//	st, _ := store.OpenDir("./library")
//	defer st.Close()
//	m := mixer.New(audmix.NewRegistry(), st)
//	file, err := m.MixSources(ctx, voiceBlob, musicBlob, 0.7, 0.7)
//
// # Command Line
//
// cmd/audmix wraps the pipeline in a CLI:
//
//	audmix import recordings voice.ogg
//	audmix mix voice.ogg music.mp3 --gain-a 0.8 --gain-b 0.5
//	audmix library mixes
package audmix
