// Package storage defines the content-directory abstraction posts live in.
package storage

import "github.com/starford/algonotes/internal/models"

// Provider is the interface for post file operations. Names are plain file
// names inside the content directory; subdirectories are not posts.
type Provider interface {
	// List returns metadata for every post file (.md, .mdx) in the directory.
	List() ([]models.PostMetadata, error)
	// Resolve returns the file name backing slug, or false when absent.
	Resolve(slug string) (string, bool)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Write atomically writes content to the named file.
	Write(name string, content []byte) error
	// Delete removes the named file.
	Delete(name string) error
	// Move renames oldName to newName.
	Move(oldName, newName string) error
	// Root returns the absolute content directory.
	Root() string
}
