// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dataExt = ".data"
	metaExt = ".yaml"
)

// Dir stores each record as two files in <root>/<collection>/: the payload
// (<id>.data) and its record (<id>.yaml). The record is written last, so a
// payload without one is ignored.
type Dir struct {
	root string

	mtx    sync.RWMutex
	closed bool

	now func() time.Time
}

// OpenDir opens a directory store rooted at root, creating the collection
// directories if needed.
func OpenDir(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("store root directory is empty")
	}

	for _, c := range Collections {
		if err := os.MkdirAll(filepath.Join(root, c), 0o755); err != nil {
			return nil, fmt.Errorf("create collection %s: %w", c, err)
		}
	}

	return &Dir{root: root, now: time.Now}, nil
}

// Root returns the directory the store lives in.
func (d *Dir) Root() string { return d.root }

func (d *Dir) path(collection, id, ext string) string {
	return filepath.Join(d.root, collection, id+ext)
}

func (d *Dir) Put(ctx context.Context, collection, name string, data []byte) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if err := checkCollection(collection); err != nil {
		return Record{}, err
	}
	if err := checkName(name); err != nil {
		return Record{}, err
	}

	d.mtx.RLock()
	defer d.mtx.RUnlock()

	if d.closed {
		return Record{}, ErrClosed
	}

	rec := newRecord(collection, name, len(data), d.now())

	meta, err := yaml.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}

	dataPath := d.path(collection, rec.ID, dataExt)
	if err := writeFileAtomic(dataPath, data); err != nil {
		return Record{}, err
	}
	if err := writeFileAtomic(d.path(collection, rec.ID, metaExt), meta); err != nil {
		os.Remove(dataPath)
		return Record{}, err
	}

	return rec, nil
}

func (d *Dir) List(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	d.mtx.RLock()
	defer d.mtx.RUnlock()

	if d.closed {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(filepath.Join(d.root, collection))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	recs := make([]Record, 0, len(entries)/2)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id, ok := strings.CutSuffix(e.Name(), metaExt)
		if !ok || e.IsDir() {
			continue
		}

		rec, err := d.readRecord(collection, id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)

	return recs, nil
}

func (d *Dir) Get(ctx context.Context, collection, id string) ([]byte, Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, Record{}, err
	}
	if err := checkCollection(collection); err != nil {
		return nil, Record{}, err
	}
	if err := checkID(id); err != nil {
		return nil, Record{}, err
	}

	d.mtx.RLock()
	defer d.mtx.RUnlock()

	if d.closed {
		return nil, Record{}, ErrClosed
	}

	rec, err := d.readRecord(collection, id)
	if err != nil {
		return nil, Record{}, err
	}

	data, err := os.ReadFile(d.path(collection, id, dataExt))
	if err != nil {
		return nil, Record{}, fmt.Errorf("read %s/%s: %w", collection, id, err)
	}

	return data, rec, nil
}

func (d *Dir) readRecord(collection, id string) (Record, error) {
	raw, err := os.ReadFile(d.path(collection, id, metaExt))
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("read record %s/%s: %w", collection, id, err)
	}

	var rec Record
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %s/%s: %w", collection, id, err)
	}

	return rec, nil
}

func (d *Dir) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.closed = true
	return nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}

	return nil
}
