// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/store"
)

func newWatchCmd(a *app) *cobra.Command {
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "watch <collection> <dir>",
		Short: "Import every audio file that appears in a directory",
		Long: `Watch a directory, for example the one a browser downloads into or a
recorder saves to, and import each new audio file into the collection once it
has not changed for the settle period. Hidden files and files no decoder
recognizes are skipped.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: store.Collections,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, dir := args[0], args[1]
			if !slices.Contains(store.Collections, collection) {
				return fmt.Errorf("%w %q", store.ErrUnknownCollection, collection)
			}

			w, err := newDirWatcher(dir)
			if err != nil {
				return err
			}
			defer w.Close()

			imp := &importer{
				reg:        audmix.NewRegistry(),
				store:      a.store,
				collection: collection,
				log:        a.log,
				out:        cmd.OutOrStdout(),
			}

			a.log.Info("watching", zap.String("dir", dir), zap.String("collection", collection))
			return watchLoop(cmd.Context(), w, settle, a.log, imp.handle)
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 500*time.Millisecond, "time a file must stay unchanged before it is imported")

	return cmd
}

func newDirWatcher(dir string) (*fsnotify.Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return w, nil
}

// watchLoop calls handle for each file created or written under w once no
// event for it arrived during settle. It returns when ctx ends or w closes.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, settle time.Duration, log *zap.Logger, handle func(ctx context.Context, path string)) error {
	if settle <= 0 {
		settle = 500 * time.Millisecond
	}

	pending := make(map[string]time.Time)
	tick := time.NewTicker(max(settle/4, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				pending[ev.Name] = time.Now()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
			}

		case now := <-tick.C:
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				handle(ctx, path)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}

// importer stores the audio files reported by watchLoop.
type importer struct {
	reg        *audio.Registry
	store      store.Store
	collection string
	log        *zap.Logger
	out        io.Writer
}

func (imp *importer) handle(ctx context.Context, path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		imp.log.Warn("read failed", zap.String("path", path), zap.Error(err))
		return
	}

	_, format, ok := imp.reg.Lookup(audio.Blob{Name: name, Data: data})
	if !ok {
		imp.log.Debug("skipped", zap.String("path", path))
		return
	}
	imp.log.Debug("recognized", zap.String("path", path), zap.String("format", format))

	rec, err := imp.store.Put(ctx, imp.collection, name, data)
	if err != nil {
		imp.log.Error("import failed", zap.String("path", path), zap.Error(err))
		return
	}

	imp.log.Info("imported",
		zap.String("collection", rec.Collection),
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
	)
	fmt.Fprintf(imp.out, "%s:%s\t%s\n", rec.Collection, rec.ID, rec.Name)
}
