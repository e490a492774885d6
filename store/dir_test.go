// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDir_CreatesCollections(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "library")
	d, err := OpenDir(root)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, root, d.Root())
	for _, c := range Collections {
		info, err := os.Stat(filepath.Join(root, c))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	_, err = OpenDir("")
	assert.Error(t, err)
}

func TestDir_Reopen(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ctx := context.Background()

	d, err := OpenDir(root)
	require.NoError(t, err)
	rec, err := d.Put(ctx, Mixes, "mix.wav", []byte("payload"))
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = OpenDir(root)
	require.NoError(t, err)
	defer d.Close()

	data, got, err := d.Get(ctx, Mixes, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, rec.Name, got.Name)
}

func TestDir_IgnoresOrphanPayloads(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d, err := OpenDir(root)
	require.NoError(t, err)
	defer d.Close()

	orphan := filepath.Join(root, Mixes, "5f0c8d4e-0000-4000-8000-000000000000"+dataExt)
	require.NoError(t, os.WriteFile(orphan, []byte("half written"), 0o644))

	recs, err := d.List(context.Background(), Mixes)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
