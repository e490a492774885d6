// SPDX-License-Identifier: EPL-2.0

// Package mixer turns two audio clips into a stored stereo WAV mix.
//
// A Mixer decodes both sources concurrently, waits for both, mixes them with
// the requested gains, encodes the result and hands it to a store.Store:
//
//	m := mixer.New(audmix.NewRegistry(), st, mixer.WithLogger(log))
//	file, err := m.MixSources(ctx, voice, music, 0.7, 0.7)
//
// Failures come back as *StageError naming the step (decode, mix, encode or
// persist) and, for decode failures, the offending source. Nothing is
// retried and nothing is stored when any step fails.
package mixer
