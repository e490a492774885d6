// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileName names a mix of the sources a and b made at t:
// mix-<a>-<b>-<unix millis>.wav. Extensions are dropped from the source
// names and every character outside [A-Za-z0-9_-] becomes an underscore.
func FileName(a, b string, t time.Time) string {
	return fmt.Sprintf("mix-%s-%s-%d.wav", cleanName(a), cleanName(b), t.UnixMilli())
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)

	if name == "" {
		return "source"
	}
	return name
}
