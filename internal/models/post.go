// Package models defines the domain types for algonotes.
package models

import (
	"strings"
	"time"
)

// Difficulty grades an algorithm problem. The zero value means "none".
type Difficulty string

const (
	DifficultyNone   Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the grades a post can carry.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty reads a difficulty as written by a client. Both "" and
// "none" mean no grade.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.TrimSpace(s)
	if s == "none" {
		return DifficultyNone, true
	}
	d := Difficulty(s)
	return d, d.Valid()
}

// Valid reports whether d is none or one of the known grades.
func (d Difficulty) Valid() bool {
	if d == DifficultyNone {
		return true
	}
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// PostSummary is the list representation of a post (no body, no HTML).
type PostSummary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Difficulty  *string  `json:"difficulty"`
	Date        *string  `json:"date"`
}

// Post is a fully loaded markdown post.
type Post struct {
	PostSummary
	Content string `json:"content"`
	HTML    string `json:"html"`
}

// PostMetadata is what storage reports about one post file.
type PostMetadata struct {
	Slug      string    `json:"slug"`
	Filename  string    `json:"filename"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
