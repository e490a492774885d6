// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/internal/audiotest"
)

// workspace is a temporary library plus a config file pointing at it.
type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "audmix.yaml")
	content := "store:\n  kind: dir\n  dir: " + filepath.Join(dir, "library") + "\nlog:\n  level: warn\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))

	return workspace{dir: dir, config: cfg}
}

func (w workspace) clip(t *testing.T, name string, rate, channels, frames int) string {
	t.Helper()

	path := filepath.Join(w.dir, name)
	blob := audiotest.ToneBlob(t, name, rate, channels, frames, 440)
	require.NoError(t, os.WriteFile(path, blob.Data, 0o600))
	return path
}

func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", w.config}, args...)
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestMix(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	a := w.clip(t, "voice.wav", 8000, 1, 800)
	b := w.clip(t, "music.wav", 8000, 2, 400)
	out := filepath.Join(w.dir, "out.wav")

	stdout, err := w.run(t, "mix", a, b, "--gain-a", "0.5", "--out", out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "mixes:"), "stdout = %q", stdout)
	assert.Contains(t, stdout, "mix-voice-music-")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, data, wav.HeaderSize+800*2*2)

	listing, err := w.run(t, "library", "mixes")
	require.NoError(t, err)
	assert.Contains(t, listing, "mix-voice-music-")
	assert.Equal(t, 2, strings.Count(listing, "\n"), "header plus one record")
}

func TestImportMixExport(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)

	stdout, err := w.run(t, "import", "downloads", w.clip(t, "rain.wav", 16000, 2, 1600))
	require.NoError(t, err)
	download := strings.Fields(stdout)[0]

	stdout, err = w.run(t, "import", "recordings", w.clip(t, "memo.wav", 8000, 1, 800), "--name", "memo take 2.wav")
	require.NoError(t, err)
	recording := strings.Fields(stdout)[0]
	assert.True(t, strings.HasPrefix(recording, "recordings:"))

	stdout, err = w.run(t, "mix", download, recording, "--resample")
	require.NoError(t, err)
	mix := strings.Fields(stdout)[0]
	assert.Contains(t, stdout, "mix-rain-memo_take_2-")

	out := filepath.Join(w.dir, "exported.wav")
	_, err = w.run(t, "export", mix, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))

	listing, err := w.run(t, "library")
	require.NoError(t, err)
	for _, c := range []string{"downloads", "recordings", "mixes"} {
		assert.Contains(t, listing, c)
	}
}

func TestMix_Errors(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	good := w.clip(t, "good.wav", 8000, 1, 100)
	bad := filepath.Join(w.dir, "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not audio at all"), 0o600))

	_, err := w.run(t, "mix", good, bad)
	assert.ErrorContains(t, err, "decode")
	assert.ErrorContains(t, err, "bad.wav")

	_, err = w.run(t, "mix", good, filepath.Join(w.dir, "missing.wav"))
	assert.Error(t, err)

	_, err = w.run(t, "mix", good, good, "--gain-b", "NaN")
	assert.ErrorContains(t, err, "gain")

	_, err = w.run(t, "mix", good)
	assert.Error(t, err)

	_, err = w.run(t, "library", "podcasts")
	assert.Error(t, err)

	_, err = w.run(t, "export", "mixes:not-an-id", filepath.Join(w.dir, "x.wav"))
	assert.Error(t, err)

	listing, err := w.run(t, "library", "mixes")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(listing, "\n"), "failed mixes must not be stored")
}

func TestParseRef(t *testing.T) {
	t.Parallel()

	id := "0b7e7c1e-6c55-4a49-9a4b-3b9d0c1e2f3a"

	c, got, ok := parseRef("downloads:" + id)
	assert.True(t, ok)
	assert.Equal(t, "downloads", c)
	assert.Equal(t, id, got)

	for _, arg := range []string{"voice.wav", "podcasts:" + id, "mixes:abc", "C:" + id} {
		_, _, ok := parseRef(arg)
		assert.False(t, ok, arg)
	}
}
