// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ik5/audmix/audio"
)

// WithDecodeCache keeps up to size decoded sources, keyed by content, so
// that mixing the same clip again skips decoding. Cached buffers are shared
// and never modified. A size below 1 disables the cache.
func WithDecodeCache(size int) Option {
	return func(m *Mixer) {
		if size < 1 {
			m.cache = nil
			return
		}
		cache, err := lru.New[string, *audio.Buffer](size)
		if err != nil {
			panic(err)
		}
		m.cache = cache
	}
}

// cacheKey identifies blob by content. The extension is part of the key
// because it steers decoder selection for unrecognized signatures.
func cacheKey(blob audio.Blob) string {
	sum := sha256.Sum256(blob.Data)
	return hex.EncodeToString(sum[:]) + strings.ToLower(filepath.Ext(blob.Name))
}
