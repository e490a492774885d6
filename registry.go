// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
)

// Formats lists the canonical format names NewRegistry registers.
var Formats = []string{"wav", "mp3", "ogg", "aiff"}

// NewRegistry returns a registry holding every bundled decoder, keyed by
// canonical format name with the common file extensions as aliases.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wave")
	reg.Register("mp3", mp3.Decoder{}, "mpeg", "mpga")
	reg.Register("ogg", vorbis.Decoder{}, "oga", "vorbis")
	reg.Register("aiff", aiff.Decoder{}, "aif", "aifc")
	return reg
}
