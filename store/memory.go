// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

type memEntry struct {
	rec  Record
	data []byte
}

// Memory is an in-process Store.
type Memory struct {
	mtx     sync.RWMutex
	entries map[string]map[string]memEntry
	closed  bool

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]map[string]memEntry),
		now:     time.Now,
	}
}

func (m *Memory) Put(ctx context.Context, collection, name string, data []byte) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if err := checkCollection(collection); err != nil {
		return Record{}, err
	}
	if err := checkName(name); err != nil {
		return Record{}, err
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.closed {
		return Record{}, ErrClosed
	}

	rec := newRecord(collection, name, len(data), m.now())
	if m.entries[collection] == nil {
		m.entries[collection] = make(map[string]memEntry)
	}
	m.entries[collection][rec.ID] = memEntry{rec: rec, data: slices.Clone(data)}

	return rec, nil
}

func (m *Memory) List(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	recs := make([]Record, 0, len(m.entries[collection]))
	for _, e := range m.entries[collection] {
		recs = append(recs, e.rec)
	}
	sortRecords(recs)

	return recs, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) ([]byte, Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, Record{}, err
	}
	if err := checkCollection(collection); err != nil {
		return nil, Record{}, err
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if m.closed {
		return nil, Record{}, ErrClosed
	}

	e, ok := m.entries[collection][id]
	if !ok {
		return nil, Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}

	return slices.Clone(e.data), e.rec, nil
}

func (m *Memory) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}
