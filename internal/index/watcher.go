package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the content directory and keeps the
// index in step with out-of-band edits until ctx is cancelled. cb (if
// non-nil) is called after each index mutation. Writes whose checksum is
// already indexed (for example those made through the post service) do not
// produce a callback.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// entries and indexes files the event stream may have missed.
func Watch(ctx context.Context, db PostIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(db, store, logger, cb); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			slug, isPost := storage.SlugOf(name)
			if !isPost {
				continue
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			refresh(db, store, slug, logger, cb)
			if ev.Op&fsnotify.Rename != 0 {
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// refresh re-reads the file currently backing slug (the .md file wins over
// .mdx) and updates or removes its index entry.
func refresh(db PostIndex, store storage.Provider, slug string, logger *slog.Logger, cb EventCallback) {
	prev, err := db.GetChecksum(slug)
	if err != nil {
		logger.Warn("watcher: checksum lookup failed", slog.String("slug", slug), slog.String("error", err.Error()))
		return
	}

	name, ok := store.Resolve(slug)
	if !ok {
		if prev == "" {
			return
		}
		if err := db.DeletePost(slug); err != nil {
			logger.Warn("watcher: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			return
		}
		logger.Debug("watcher: deleted", slog.String("slug", slug))
		if cb != nil {
			cb(EventDeleted, slug)
		}
		return
	}

	data, err := store.Read(name)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	cs := storage.Checksum(data)
	if cs == prev {
		return
	}
	meta := modTimeMeta(store.Root(), slug, name, cs)
	if err := IndexFile(db, meta, data); err != nil {
		logger.Warn("watcher: index failed", slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: indexed", slog.String("slug", slug))
	notify(cb, prev != "", slug)
}

func modTimeMeta(root, slug, name, checksum string) models.PostMetadata {
	m := models.PostMetadata{Slug: slug, Filename: name, Checksum: checksum}
	if info, err := os.Stat(filepath.Join(root, name)); err == nil {
		m.UpdatedAt = info.ModTime()
	}
	return m
}
