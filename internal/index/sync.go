package index

import (
	"log/slog"
	"time"

	"github.com/araddon/dateparse"

	"github.com/starford/algonotes/internal/frontmatter"
	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after an index change driven by the content
// directory (sync, reconcile or watcher).
type EventCallback func(kind string, slug string)

// Sync walks the content directory and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - posts whose file disappeared are deleted from the index
//
// cb may be nil.
func Sync(db PostIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Slug] = struct{}{}

		prev, known := checksums[m.Slug]
		if known && prev == m.Checksum {
			continue
		}

		data, err := store.Read(m.Filename)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("file", m.Filename), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m, data); err != nil {
			logger.Warn("sync: index failed", slog.String("file", m.Filename), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("slug", m.Slug))
		notify(cb, known, m.Slug)
	}

	for slug := range checksums {
		if _, ok := disk[slug]; ok {
			continue
		}
		if err := db.DeletePost(slug); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("slug", slug))
		if cb != nil {
			cb(EventDeleted, slug)
		}
	}

	return nil
}

func notify(cb EventCallback, known bool, slug string) {
	if cb == nil {
		return
	}
	if known {
		cb(EventUpdated, slug)
	} else {
		cb(EventCreated, slug)
	}
}

// IndexFile parses a post file and upserts it. Missing titles fall back to
// the slug; dates are parsed loosely for ordering.
func IndexFile(db PostIndex, meta models.PostMetadata, data []byte) error {
	res := frontmatter.Parse(data)
	row := RowFrom(meta, res)
	if meta.Checksum == "" {
		row.Checksum = storage.Checksum(data)
	}
	return db.UpsertPost(row, res.Body)
}

// RowFrom builds the index row of a parsed post file.
func RowFrom(meta models.PostMetadata, res *frontmatter.Result) PostRow {
	title := res.Meta.Title
	if title == "" {
		title = meta.Slug
	}
	updated := meta.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	row := PostRow{
		Slug:        meta.Slug,
		Filename:    meta.Filename,
		Title:       title,
		Description: res.Meta.Description,
		Tags:        res.Meta.Tags,
		Difficulty:  res.Meta.Difficulty,
		Date:        res.Meta.PubDate,
		Checksum:    meta.Checksum,
		UpdatedAt:   updated,
	}
	if row.Date != "" {
		if t, err := dateparse.ParseIn(row.Date, time.UTC); err == nil {
			v := t.Unix()
			row.DateUnix = &v
		}
	}
	return row
}
