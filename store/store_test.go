// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behavior every backend shares.
func testStore(t *testing.T, open func(t *testing.T) Store) {
	t.Run("PutGet", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		data := []byte("RIFF....WAVE")
		rec, err := st.Put(ctx, Mixes, "mix-a-b-1.wav", data)
		require.NoError(t, err)

		_, err = uuid.Parse(rec.ID)
		assert.NoError(t, err, "record ID should be a UUID")
		assert.Equal(t, Mixes, rec.Collection)
		assert.Equal(t, "mix-a-b-1.wav", rec.Name)
		assert.EqualValues(t, len(data), rec.Size)

		got, gotRec, err := st.Get(ctx, Mixes, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.Equal(t, rec.ID, gotRec.ID)
		assert.Equal(t, rec.Name, gotRec.Name)
		assert.True(t, rec.CreatedAt.Equal(gotRec.CreatedAt), "CreatedAt %v != %v", rec.CreatedAt, gotRec.CreatedAt)
	})

	t.Run("PutCopiesData", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		data := []byte{1, 2, 3}
		rec, err := st.Put(ctx, Downloads, "a.mp3", data)
		require.NoError(t, err)
		data[0] = 9

		got, _, err := st.Get(ctx, Downloads, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, got)
	})

	t.Run("ListIsPerCollectionAndOrdered", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		var ids []string
		for _, name := range []string{"one.ogg", "two.ogg", "three.ogg"} {
			rec, err := st.Put(ctx, Recordings, name, []byte(name))
			require.NoError(t, err)
			ids = append(ids, rec.ID)
		}
		_, err := st.Put(ctx, Downloads, "other.mp3", []byte("x"))
		require.NoError(t, err)

		recs, err := st.List(ctx, Recordings)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		for i, rec := range recs {
			assert.Equal(t, ids[i], rec.ID)
			assert.Equal(t, Recordings, rec.Collection)
		}

		recs, err = st.List(ctx, Mixes)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("NotFound", func(t *testing.T) {
		st := open(t)

		_, _, err := st.Get(context.Background(), Mixes, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)

		_, _, err = st.Get(context.Background(), Mixes, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Validation", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		_, err := st.Put(ctx, "podcasts", "a.wav", []byte{1})
		assert.ErrorIs(t, err, ErrUnknownCollection)

		_, err = st.List(ctx, "podcasts")
		assert.ErrorIs(t, err, ErrUnknownCollection)

		for _, name := range []string{"", "../a.wav", "dir/a.wav"} {
			_, err = st.Put(ctx, Mixes, name, []byte{1})
			assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		}
	})

	t.Run("Concurrent", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := st.Put(ctx, Mixes, "mix.wav", []byte("data"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		recs, err := st.List(ctx, Mixes)
		require.NoError(t, err)
		assert.Len(t, recs, 16)
	})

	t.Run("Closed", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		rec, err := st.Put(ctx, Mixes, "mix.wav", []byte("data"))
		require.NoError(t, err)
		require.NoError(t, st.Close())

		_, err = st.Put(ctx, Mixes, "mix.wav", []byte("data"))
		assert.ErrorIs(t, err, ErrClosed)
		_, err = st.List(ctx, Mixes)
		assert.ErrorIs(t, err, ErrClosed)
		_, _, err = st.Get(ctx, Mixes, rec.ID)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("Canceled", func(t *testing.T) {
		st := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := st.Put(ctx, Mixes, "mix.wav", []byte("data"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// tickingClock returns strictly increasing times so that list order is
// deterministic.
func tickingClock() func() time.Time {
	var mtx sync.Mutex
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mtx.Lock()
		defer mtx.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	testStore(t, func(t *testing.T) Store {
		m := NewMemory()
		m.now = tickingClock()
		return m
	})
}

func TestDir(t *testing.T) {
	t.Parallel()

	testStore(t, func(t *testing.T) Store {
		d, err := OpenDir(t.TempDir())
		require.NoError(t, err)
		d.now = tickingClock()
		return d
	})
}
