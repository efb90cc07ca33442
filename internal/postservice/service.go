// Package postservice implements the content store: CRUD over markdown post
// files, with the SQLite index kept in step on every mutation.
package postservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/algonotes/internal/apperr"
	"github.com/starford/algonotes/internal/frontmatter"
	"github.com/starford/algonotes/internal/index"
	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/render"
	"github.com/starford/algonotes/internal/slug"
	"github.com/starford/algonotes/internal/storage"
)

// Filter narrows List. Zero fields match everything.
type Filter = index.Filter

// Result identifies the file a write landed in.
type Result struct {
	Slug     string `json:"slug"`
	Filename string `json:"filename"`
}

// Service coordinates storage, index and rendering.
type Service struct {
	store    storage.Provider
	db       index.PostIndex
	renderer *render.Renderer
	notify   index.EventCallback
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier registers a callback fired after every successful mutation.
func WithNotifier(cb index.EventCallback) Option {
	return func(s *Service) { s.notify = cb }
}

// WithClock overrides the clock used for default publish dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new post service.
func NewService(store storage.Provider, db index.PostIndex, renderer *render.Renderer, opts ...Option) *Service {
	s := &Service{store: store, db: db, renderer: renderer, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns summaries of the posts matching f, newest first.
func (s *Service) List(_ context.Context, f Filter) ([]models.PostSummary, error) {
	rows, err := s.db.ListPosts(f)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostSummary, len(rows))
	for i, r := range rows {
		out[i] = models.PostSummary{
			Slug:        r.Slug,
			Title:       r.Title,
			Description: r.Description,
			Tags:        nonNilSlice(r.Tags),
			Difficulty:  optional(r.Difficulty),
			Date:        optional(r.Date),
		}
	}
	return out, nil
}

// Get reads, parses and renders one post.
func (s *Service) Get(_ context.Context, postSlug string) (*models.Post, error) {
	name, ok := s.store.Resolve(postSlug)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	data, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res := frontmatter.Parse(data)
	html, err := s.renderer.HTML(res.Body)
	if err != nil {
		return nil, err
	}
	title := res.Meta.Title
	if title == "" {
		title = postSlug
	}
	return &models.Post{
		PostSummary: models.PostSummary{
			Slug:        postSlug,
			Title:       title,
			Description: res.Meta.Description,
			Tags:        nonNilSlice(res.Meta.Tags),
			Difficulty:  optional(res.Meta.Difficulty),
			Date:        optional(res.Meta.PubDate),
		},
		Content: res.Body,
		HTML:    html,
	}, nil
}

// Create writes a new post named after its title.
func (s *Service) Create(_ context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	newSlug := slug.Make(in.Title)
	if newSlug == "" {
		return nil, fmt.Errorf("%w: title: must contain a letter or digit", apperr.ErrInvalid)
	}
	if _, exists := s.store.Resolve(newSlug); exists {
		return nil, apperr.ErrConflict
	}

	date := in.Date
	if date == "" {
		date = s.today()
	}
	name := newSlug + ".md"
	if err := s.write(newSlug, name, in, date); err != nil {
		return nil, err
	}
	s.emit(index.EventCreated, newSlug)
	return &Result{Slug: newSlug, Filename: name}, nil
}

// Update rewrites a post. A title change renames the file; renaming onto
// another post's slug is a conflict. The stored publish date is kept when
// in.Date is empty.
func (s *Service) Update(_ context.Context, oldSlug string, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	oldName, ok := s.store.Resolve(oldSlug)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	newSlug := slug.Make(in.Title)
	if newSlug == "" {
		return nil, fmt.Errorf("%w: title: must contain a letter or digit", apperr.ErrInvalid)
	}
	if newSlug != oldSlug {
		if _, taken := s.store.Resolve(newSlug); taken {
			return nil, apperr.ErrConflict
		}
	}

	date := in.Date
	if date == "" {
		existing, err := s.store.Read(oldName)
		if err != nil {
			return nil, err
		}
		date = frontmatter.Parse(existing).Meta.PubDate
		if date == "" {
			date = s.today()
		}
	}

	newName := newSlug + ".md"
	if newName != oldName {
		if err := s.store.Move(oldName, newName); err != nil {
			if errors.Is(err, os.ErrExist) {
				return nil, apperr.ErrConflict
			}
			return nil, err
		}
	}
	if err := s.write(newSlug, newName, in, date); err != nil {
		return nil, err
	}

	if newSlug != oldSlug {
		if err := s.reindex(oldSlug); err != nil {
			return nil, err
		}
		s.emit(index.EventDeleted, oldSlug)
		s.emit(index.EventCreated, newSlug)
	} else {
		s.emit(index.EventUpdated, newSlug)
	}
	return &Result{Slug: newSlug, Filename: newName}, nil
}

// Delete removes every file backing the slug.
func (s *Service) Delete(_ context.Context, postSlug string) error {
	name, ok := s.store.Resolve(postSlug)
	if !ok {
		return apperr.ErrNotFound
	}
	for ok {
		if err := s.store.Delete(name); err != nil {
			return err
		}
		name, ok = s.store.Resolve(postSlug)
	}
	if err := s.db.DeletePost(postSlug); err != nil {
		return err
	}
	s.emit(index.EventDeleted, postSlug)
	return nil
}

// Tags returns every distinct tag, sorted.
func (s *Service) Tags(_ context.Context) ([]string, error) {
	return s.db.Tags()
}

// Difficulties returns every distinct difficulty in use, sorted.
func (s *Service) Difficulties(_ context.Context) ([]string, error) {
	return s.db.Difficulties()
}

// Resync reconciles the index with the content directory, firing the
// notifier for every change found.
func (s *Service) Resync(logger *slog.Logger) error {
	return index.Sync(s.db, s.store, logger, s.notify)
}

func (s *Service) write(postSlug, name string, in Input, date string) error {
	difficulty, _ := models.ParseDifficulty(in.Difficulty)
	data, err := frontmatter.Encode(frontmatter.Meta{
		Title:       in.Title,
		Description: in.Description,
		Tags:        cleanTags(in.Tags),
		Difficulty:  string(difficulty),
		PubDate:     date,
	}, in.Content)
	if err != nil {
		return err
	}
	if err := s.store.Write(name, data); err != nil {
		return err
	}
	return index.IndexFile(s.db, models.PostMetadata{
		Slug:      postSlug,
		Filename:  name,
		Checksum:  storage.Checksum(data),
		UpdatedAt: s.now().UTC(),
	}, data)
}

// reindex re-reads whatever still backs slug (an .mdx sibling, say) or
// drops it from the index.
func (s *Service) reindex(postSlug string) error {
	name, ok := s.store.Resolve(postSlug)
	if !ok {
		return s.db.DeletePost(postSlug)
	}
	data, err := s.store.Read(name)
	if err != nil {
		return err
	}
	return index.IndexFile(s.db, models.PostMetadata{Slug: postSlug, Filename: name}, data)
}

func (s *Service) emit(kind, postSlug string) {
	if s.notify != nil {
		s.notify(kind, postSlug)
	}
}

func (s *Service) today() string {
	return s.now().UTC().Format(time.DateOnly)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
