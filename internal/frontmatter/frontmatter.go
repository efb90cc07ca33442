// Package frontmatter splits YAML frontmatter from markdown posts and writes it back.
package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Meta holds the post fields stored in frontmatter.
type Meta struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,flow"`
	Difficulty  string   `yaml:"difficulty,omitempty"`
	PubDate     string   `yaml:"pubDate,omitempty"`
}

// Result holds the output of parsing a post file.
type Result struct {
	Meta Meta
	// Raw is the decoded frontmatter, nil when absent or unparseable.
	Raw  map[string]any
	Body string
}

// Parse extracts frontmatter and body from raw post bytes. Missing or
// invalid frontmatter is not an error: the whole input becomes the body.
func Parse(data []byte) *Result {
	raw, body := split(data)
	return &Result{
		Meta: metaFrom(raw),
		Raw:  raw,
		Body: body,
	}
}

// Encode renders meta and body in the on-disk post layout:
// "---\n<yaml>---\n\n<body>".
func Encode(meta Meta, body string) ([]byte, error) {
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	var fm bytes.Buffer
	enc := yaml.NewEncoder(&fm)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}

	var out bytes.Buffer
	out.WriteString(delim + "\n")
	out.Write(fm.Bytes())
	out.WriteString(delim + "\n\n")
	out.WriteString(body)
	return out.Bytes(), nil
}

func split(data []byte) (map[string]any, string) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(after), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

func metaFrom(fm map[string]any) Meta {
	m := Meta{Tags: []string{}}
	if fm == nil {
		return m
	}
	m.Title = scalar(fm["title"])
	m.Description = scalar(fm["description"])
	m.Difficulty = scalar(fm["difficulty"])
	m.PubDate = scalar(fm["pubDate"])
	if m.PubDate == "" {
		m.PubDate = scalar(fm["date"])
	}
	if list, ok := fm["tags"].([]any); ok {
		for _, item := range list {
			if s := scalar(item); s != "" {
				m.Tags = append(m.Tags, s)
			}
		}
	}
	return m
}

// scalar renders a YAML scalar as a string; collections and null yield "".
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
