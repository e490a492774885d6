// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collections of the audio library.
const (
	Downloads  = "downloads"
	Recordings = "recordings"
	Mixes      = "mixes"
)

// Collections lists every known collection.
var Collections = []string{Downloads, Recordings, Mixes}

var (
	ErrClosed            = errors.New("store is closed")
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidName       = errors.New("invalid record name")
)

// Record describes one stored file.
type Record struct {
	ID         string    `yaml:"id" json:"id"`
	Collection string    `yaml:"collection" json:"collection"`
	Name       string    `yaml:"name" json:"name"`
	Size       int64     `yaml:"size" json:"size"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
}

// Store persists audio files in named collections. Implementations are safe
// for concurrent use and must not be used after Close.
type Store interface {
	// Put stores data under a new ID and returns its record.
	Put(ctx context.Context, collection, name string, data []byte) (Record, error)
	// List returns the records of collection, oldest first.
	List(ctx context.Context, collection string) ([]Record, error)
	// Get returns the contents and record stored under id.
	Get(ctx context.Context, collection, id string) ([]byte, Record, error)
	Close() error
}

func checkCollection(collection string) error {
	if !slices.Contains(Collections, collection) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

func newRecord(collection, name string, size int, now time.Time) Record {
	return Record{
		ID:         uuid.NewString(),
		Collection: collection,
		Name:       name,
		Size:       int64(size),
		CreatedAt:  now.UTC(),
	}
}

func sortRecords(recs []Record) {
	slices.SortStableFunc(recs, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// ContentType guesses the MIME type of a record from its name.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".wav", ".wave":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".aif", ".aiff", ".aifc":
		return "audio/aiff"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
