// Package attachments stores images referenced from posts in a flat
// directory next to the content.
package attachments

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxSize caps a single attachment.
const MaxSize = 20 << 20 // 20 MB

// ErrExists is returned by Save when the name is taken.
var ErrExists = errors.New("attachment already exists")

// mimeToExt maps detected content types to the extensions we accept.
var mimeToExt = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

var (
	allowedExts    = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true}
	unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// Store is a flat directory of image files.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Dir returns the attachments directory.
func (s *Store) Dir() string { return s.dir }

// Path validates that name is a plain image file name and returns its
// absolute location inside the store.
func (s *Store) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if ext := strings.ToLower(filepath.Ext(name)); !allowedExts[ext] {
		return "", fmt.Errorf("unsupported file type: %q", ext)
	}
	abs := filepath.Join(s.dir, name)
	if filepath.Dir(abs) != s.dir {
		return "", fmt.Errorf("path escapes attachments directory")
	}
	return abs, nil
}

// Save writes data under name after checking that the content matches the
// extension. It never overwrites an existing file.
func (s *Store) Save(name string, data []byte) error {
	abs, err := s.Path(name)
	if err != nil {
		return err
	}
	if len(data) > MaxSize {
		return fmt.Errorf("file too large: %d bytes (max %d)", len(data), MaxSize)
	}
	if err := CheckContent(data, filepath.Ext(name)); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("attachments: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("attachments: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("attachments: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("attachments: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("attachments: chmod: %w", err)
	}
	// Link fails if the target exists, unlike Rename.
	if err := os.Link(tmp.Name(), abs); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("attachments: link: %w", err)
	}
	return nil
}

// URL is the public path an attachment is served under.
func URL(name string) string {
	return "/attachments/" + name
}

// ExtForMIME returns the extension for a content type, or "".
func ExtForMIME(contentType string) string {
	return mimeToExt[strings.TrimSpace(strings.Split(contentType, ";")[0])]
}

// SanitizeName strips directories and unsafe characters from name. An
// unusable name is replaced with a random one carrying ext.
func SanitizeName(name, ext string) string {
	name = filepath.Base(name)
	name = unsafeFilename.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || !strings.Contains(name, ".") {
		return RandomName(ext)
	}
	return name
}

// RandomName returns a fresh UUID file name with ext.
func RandomName(ext string) string {
	if ext == "" {
		ext = ".png"
	}
	return uuid.New().String() + ext
}

// CheckContent verifies data looks like the image type ext claims.
func CheckContent(data []byte, ext string) error {
	ext = strings.ToLower(ext)
	if ext == ".svg" {
		prefix := data
		if len(prefix) > 1024 {
			prefix = prefix[:1024]
		}
		if !bytes.Contains(prefix, []byte("<svg")) {
			return fmt.Errorf("content does not appear to be a valid SVG (missing <svg tag)")
		}
		return nil
	}

	detected := http.DetectContentType(data)
	got := ExtForMIME(detected)
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if got != ext {
		return fmt.Errorf("content does not match extension %s (detected: %s)", ext, detected)
	}
	return nil
}
