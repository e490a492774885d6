// SPDX-License-Identifier: EPL-2.0

// Package store keeps the audio library: downloaded clips, recordings and
// finished mixes.
//
// Three backends implement Store:
//   - Dir keeps files under a local directory
//   - Minio keeps objects in an S3-compatible bucket
//   - Memory keeps everything in process, for tests and dry runs
//
// Each backend is an explicit session: open it, hand it to whoever needs it
// and Close it when done. There is no package-level handle.
//
//	st, err := store.OpenDir("./library")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	rec, err := st.Put(ctx, store.Mixes, "mix.wav", data)
package store
