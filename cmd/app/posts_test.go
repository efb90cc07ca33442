package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/starford/algonotes/internal/models"
)

func TestPrintPosts(t *testing.T) {
	color.NoColor = true
	easy, date := "easy", "2024-01-15"

	var buf bytes.Buffer
	printPosts(&buf, []models.PostSummary{
		{Slug: "two-sum", Title: "Two Sum", Tags: []string{"array", "hash"}, Difficulty: &easy, Date: &date},
		{Slug: "notes", Title: "Notes", Tags: []string{}},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "DATE") {
		t.Errorf("header = %q", lines[0])
	}
	for _, want := range []string{"2024-01-15", "two-sum", "Two Sum", "easy", "array, hash"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
	if !strings.HasPrefix(lines[2], "-") || !strings.Contains(lines[2], "notes") {
		t.Errorf("undated row = %q", lines[2])
	}
}

func TestPrintPosts_Empty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printPosts(&buf, nil)
	if strings.TrimSpace(buf.String()) != "no posts" {
		t.Errorf("out = %q", buf.String())
	}
}
