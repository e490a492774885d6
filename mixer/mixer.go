// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/store"
)

// EncodedFile is a finished mix. Record is filled in once the file has been
// persisted.
type EncodedFile struct {
	Name      string
	Data      []byte
	CreatedAt time.Time
	Record    store.Record
}

// Mixer runs the decode, mix, encode and persist pipeline. It holds no
// per-request state and is safe for concurrent use.
type Mixer struct {
	reg        *audio.Registry
	store      store.Store
	log        *zap.Logger
	resample   bool
	now        func() time.Time
	collection string
	cache      *lru.Cache[string, *audio.Buffer]
}

type Option func(*Mixer)

// WithLogger sets the logger; zap.NewNop is used otherwise.
func WithLogger(log *zap.Logger) Option {
	return func(m *Mixer) { m.log = log }
}

// WithResample converts both sources to the higher sample rate before
// mixing. Without it samples are summed positionally, which shifts the pitch
// of the slower source.
func WithResample(on bool) Option {
	return func(m *Mixer) { m.resample = on }
}

// WithClock replaces time.Now for file naming.
func WithClock(now func() time.Time) Option {
	return func(m *Mixer) { m.now = now }
}

// WithCollection sets the collection mixes are stored in, store.Mixes by
// default.
func WithCollection(name string) Option {
	return func(m *Mixer) { m.collection = name }
}

// New creates a Mixer that decodes with reg and persists to st.
func New(reg *audio.Registry, st store.Store, opts ...Option) *Mixer {
	m := &Mixer{
		reg:        reg,
		store:      st,
		log:        zap.NewNop(),
		now:        time.Now,
		collection: store.Mixes,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MixSources decodes a and b concurrently, mixes them with the given gains,
// encodes the result as 16-bit stereo WAV and persists it. Any failure is a
// *StageError and leaves nothing stored.
func (m *Mixer) MixSources(ctx context.Context, a, b audio.Blob, gainA, gainB float64) (*EncodedFile, error) {
	file, err := m.Render(ctx, a, b, gainA, gainB)
	if err != nil {
		return nil, err
	}

	rec, err := m.store.Put(ctx, m.collection, file.Name, file.Data)
	if err != nil {
		m.log.Error("persist mix failed", zap.String("name", file.Name), zap.Error(err))
		return nil, &StageError{Stage: StagePersist, Source: file.Name, Err: err}
	}
	file.Record = rec

	m.log.Info("mix stored",
		zap.String("id", rec.ID),
		zap.String("collection", rec.Collection),
		zap.String("name", rec.Name),
		zap.Int64("bytes", rec.Size),
	)

	return file, nil
}

// Render runs every step of MixSources except persistence.
func (m *Mixer) Render(ctx context.Context, a, b audio.Blob, gainA, gainB float64) (*EncodedFile, error) {
	// bad gains fail before any decoding work starts
	if err := audio.CheckGain(gainA); err != nil {
		return nil, &StageError{Stage: StageMix, Source: a.Name, Err: err}
	}
	if err := audio.CheckGain(gainB); err != nil {
		return nil, &StageError{Stage: StageMix, Source: b.Name, Err: err}
	}

	bufA, bufB, err := m.decodeBoth(ctx, a, b)
	if err != nil {
		return nil, err
	}

	if m.resample {
		if bufA, bufB, err = m.conform(ctx, bufA, bufB); err != nil {
			return nil, &StageError{Stage: StageMix, Err: err}
		}
	}

	mixed, err := audio.Mix(bufA, bufB, gainA, gainB)
	if err != nil {
		return nil, &StageError{Stage: StageMix, Err: err}
	}

	data, err := wav.Encode(mixed)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}

	created := m.now()
	m.log.Debug("mix rendered",
		zap.String("a", a.Name),
		zap.String("b", b.Name),
		zap.Int("sample_rate", mixed.SampleRate),
		zap.Int("frames", mixed.FrameCount()),
		zap.Int("bytes", len(data)),
	)

	return &EncodedFile{
		Name:      FileName(a.Name, b.Name, created),
		Data:      data,
		CreatedAt: created,
	}, nil
}

func (m *Mixer) decodeBoth(ctx context.Context, a, b audio.Blob) (*audio.Buffer, *audio.Buffer, error) {
	var bufA, bufB *audio.Buffer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bufA, err = m.decode(gctx, a)
		return err
	})
	g.Go(func() error {
		var err error
		bufB, err = m.decode(gctx, b)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return bufA, bufB, nil
}

func (m *Mixer) decode(ctx context.Context, blob audio.Blob) (*audio.Buffer, error) {
	var key string
	if m.cache != nil {
		key = cacheKey(blob)
		if buf, ok := m.cache.Get(key); ok {
			m.log.Debug("decode cache hit", zap.String("source", blob.Name))
			return buf, nil
		}
	}

	start := time.Now()

	buf, err := audio.Decode(ctx, m.reg, blob)
	if err != nil {
		m.log.Warn("decode failed", zap.String("source", blob.Name), zap.Error(err))
		return nil, &StageError{Stage: StageDecode, Source: blob.Name, Err: err}
	}

	m.log.Debug("decoded",
		zap.String("source", blob.Name),
		zap.Int("sample_rate", buf.SampleRate),
		zap.Int("channels", buf.ChannelCount()),
		zap.Int("frames", buf.FrameCount()),
		zap.Duration("took", time.Since(start)),
	)

	if m.cache != nil {
		m.cache.Add(key, buf)
	}

	return buf, nil
}

func (m *Mixer) conform(ctx context.Context, a, b *audio.Buffer) (*audio.Buffer, *audio.Buffer, error) {
	rate := max(a.SampleRate, b.SampleRate)

	a, err := audio.Conform(ctx, a, rate)
	if err != nil {
		return nil, nil, err
	}
	b, err = audio.Conform(ctx, b, rate)
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}
