// SPDX-License-Identifier: EPL-2.0

package audio

import "time"

// Blob is a compressed audio clip as handed over by the caller, e.g. a
// downloaded sound or a microphone recording. The engine never modifies Data.
type Blob struct {
	Name       string
	Data       []byte
	ReceivedAt time.Time
}
