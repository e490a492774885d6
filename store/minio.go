// SPDX-License-Identifier: EPL-2.0

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	metaName      = "Audmix-Name"
	metaCreatedAt = "Audmix-Created-At"
)

// MinioConfig points a Minio store at an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (c MinioConfig) validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("minio endpoint is empty")
	case c.Bucket == "":
		return errors.New("minio bucket is empty")
	}
	return nil
}

// Minio stores each record as the object <collection>/<id>, with the record
// fields kept in user metadata.
type Minio struct {
	client *minio.Client
	bucket string

	mtx    sync.RWMutex
	closed bool

	now func() time.Time
}

// OpenMinio connects to the bucket described by cfg and creates it when it
// does not exist yet.
func OpenMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Minio{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

func objectKey(collection, id string) string {
	return collection + "/" + id
}

// metaValue looks key up case-insensitively; servers differ in how they
// canonicalize user metadata names.
func metaValue(meta map[string]string, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) || strings.EqualFold(k, "X-Amz-Meta-"+key) {
			return v
		}
	}
	return ""
}

func recordFromObject(collection string, info minio.ObjectInfo) Record {
	rec := Record{
		ID:         path.Base(info.Key),
		Collection: collection,
		Name:       metaValue(info.UserMetadata, metaName),
		Size:       info.Size,
		CreatedAt:  info.LastModified.UTC(),
	}
	if ts, err := time.Parse(time.RFC3339Nano, metaValue(info.UserMetadata, metaCreatedAt)); err == nil {
		rec.CreatedAt = ts.UTC()
	}
	if rec.Name == "" {
		rec.Name = rec.ID
	}
	return rec
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (m *Minio) Put(ctx context.Context, collection, name string, data []byte) (Record, error) {
	if err := checkCollection(collection); err != nil {
		return Record{}, err
	}
	if err := checkName(name); err != nil {
		return Record{}, err
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if m.closed {
		return Record{}, ErrClosed
	}

	rec := newRecord(collection, name, len(data), m.now())

	_, err := m.client.PutObject(ctx, m.bucket, objectKey(collection, rec.ID),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: ContentType(name),
			UserMetadata: map[string]string{
				metaName:      name,
				metaCreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
			},
		})
	if err != nil {
		return Record{}, fmt.Errorf("upload %s: %w", objectKey(collection, rec.ID), err)
	}

	return rec, nil
}

func (m *Minio) List(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	var recs []Record
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    collection + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, obj.Err)
		}

		// listings do not carry user metadata on every server
		info, err := m.client.StatObject(ctx, m.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", obj.Key, err)
		}
		recs = append(recs, recordFromObject(collection, info))
	}
	sortRecords(recs)

	return recs, nil
}

func (m *Minio) Get(ctx context.Context, collection, id string) ([]byte, Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, Record{}, err
	}
	if err := checkID(id); err != nil {
		return nil, Record{}, err
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if m.closed {
		return nil, Record{}, ErrClosed
	}

	key := objectKey(collection, id)
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, Record{}, fmt.Errorf("download %s: %w", key, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if isNotFound(err) {
		return nil, Record{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, Record{}, fmt.Errorf("stat %s: %w", key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, Record{}, fmt.Errorf("download %s: %w", key, err)
	}

	return data, recordFromObject(collection, info), nil
}

func (m *Minio) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.closed = true
	return nil
}
