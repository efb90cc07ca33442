package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PostRow represents a row in the posts table together with its tags.
type PostRow struct {
	Slug        string
	Filename    string
	Title       string
	Description string
	Tags        []string
	Difficulty  string
	// Date is the date exactly as written in frontmatter.
	Date string
	// DateUnix is the parsed Date; nil when absent or unparseable.
	DateUnix  *int64
	Checksum  string
	UpdatedAt time.Time
}

// Filter narrows ListPosts. Zero fields match everything.
type Filter struct {
	// Tag must be one of the post's tags (exact, case-sensitive).
	Tag string
	// Difficulty must equal the post's difficulty.
	Difficulty string
	// Query is a case-insensitive substring of title, description and
	// raw markdown body.
	Query string
}

// UpsertPost inserts or replaces a post and its tags within a transaction.
// body is the raw markdown used for substring search.
func (db *DB) UpsertPost(p PostRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var dateUnix sql.NullInt64
	if p.DateUnix != nil {
		dateUnix = sql.NullInt64{Int64: *p.DateUnix, Valid: true}
	}
	_, err = tx.Exec(`
		INSERT INTO posts (slug, filename, title, description, difficulty, date_raw, date_unix, checksum, haystack, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			filename    = excluded.filename,
			title       = excluded.title,
			description = excluded.description,
			difficulty  = excluded.difficulty,
			date_raw    = excluded.date_raw,
			date_unix   = excluded.date_unix,
			checksum    = excluded.checksum,
			haystack    = excluded.haystack,
			updated_at  = excluded.updated_at
	`, p.Slug, p.Filename, p.Title, p.Description, p.Difficulty, p.Date, dateUnix,
		p.Checksum, Haystack(p.Title, p.Description, body), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE slug = ?`, p.Slug); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(p.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO post_tags (slug, tag, position) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for i, tag := range p.Tags {
			if _, err := stmt.Exec(p.Slug, tag, i); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePost removes a post and its tags.
func (db *DB) DeletePost(slug string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete post: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a post, or "" if not indexed.
func (db *DB) GetChecksum(slug string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM posts WHERE slug = ?`, slug).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns slug → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT slug, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}

// ListPosts returns the posts matching f, newest first. Undated posts come
// after dated ones; ties are broken by slug.
func (db *DB) ListPosts(f Filter) ([]PostRow, error) {
	var (
		where []string
		args  []any
	)
	if f.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM post_tags t WHERE t.slug = p.slug AND t.tag = ?)`)
		args = append(args, f.Tag)
	}
	if f.Difficulty != "" {
		where = append(where, `p.difficulty = ?`)
		args = append(args, f.Difficulty)
	}
	if f.Query != "" {
		where = append(where, `instr(p.haystack, ?) > 0`)
		args = append(args, strings.ToLower(f.Query))
	}

	q := `SELECT p.slug, p.filename, p.title, p.description, p.difficulty, p.date_raw, p.date_unix, p.checksum, p.updated_at FROM posts p`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY p.date_unix IS NULL, p.date_unix DESC, p.slug ASC`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	var out []PostRow
	for rows.Next() {
		var (
			r        PostRow
			dateUnix sql.NullInt64
		)
		if err := rows.Scan(&r.Slug, &r.Filename, &r.Title, &r.Description, &r.Difficulty,
			&r.Date, &dateUnix, &r.Checksum, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if dateUnix.Valid {
			v := dateUnix.Int64
			r.DateUnix = &v
		}
		r.Tags = []string{}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	tags, err := db.tagsBySlug()
	if err != nil {
		return nil, err
	}
	for i := range out {
		if t, ok := tags[out[i].Slug]; ok {
			out[i].Tags = t
		}
	}
	return out, nil
}

func (db *DB) tagsBySlug() (map[string][]string, error) {
	rows, err := db.conn.Query(`SELECT slug, tag FROM post_tags ORDER BY slug, position`)
	if err != nil {
		return nil, fmt.Errorf("index: load tags: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]string)
	for rows.Next() {
		var slug, tag string
		if err := rows.Scan(&slug, &tag); err != nil {
			return nil, err
		}
		out[slug] = append(out[slug], tag)
	}
	return out, rows.Err()
}

// Tags returns every distinct tag, sorted.
func (db *DB) Tags() ([]string, error) {
	return db.distinct(`SELECT DISTINCT tag FROM post_tags ORDER BY tag`)
}

// Difficulties returns every distinct non-empty difficulty, sorted.
func (db *DB) Difficulties() ([]string, error) {
	return db.distinct(`SELECT DISTINCT difficulty FROM posts WHERE difficulty <> '' ORDER BY difficulty`)
}

func (db *DB) distinct(query string) ([]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("index: distinct: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Haystack is the lowercased text a search query is matched against.
func Haystack(title, description, body string) string {
	return strings.ToLower(title + " " + description + " " + body)
}
