package mcpserver

// PostFormat describes the on-disk post format that LLM consumers should
// follow when drafting algorithm notes.
const PostFormat = `# algonotes Post Format

Each post is one Markdown file directly in the content directory. The file
name is the slug plus ` + "`.md`" + ` (` + "`.mdx`" + ` is read too).

## Structure

` + "```" + `markdown
---
title: Two Sum                      # REQUIRED; the slug is derived from it
description: Hash map warm-up       # OPTIONAL
tags: [array, hash]                 # OPTIONAL; YAML list, matched exactly
difficulty: easy                    # OPTIONAL; easy | medium | hard
pubDate: "2024-01-15"               # OPTIONAL; defaults to today (UTC)
---

Body text in GitHub-flavoured Markdown.
` + "```" + `

## Rules

1. **Slugs come from titles.** Lowercase; every character other than a-z,
   0-9 or a Hangul syllable becomes ` + "`-`" + `; runs collapse and edges are
   trimmed. "Two Sum" becomes ` + "`two-sum`" + `.
2. **Titles must be unique** after slugging; creating a duplicate fails.
3. **Renaming** a post (changing its title) moves the file to the new slug.
4. **Tags are case-sensitive**: ` + "`Graph`" + ` and ` + "`graph`" + ` are different tags.
5. **Dates**: ` + "`pubDate`" + ` wins over ` + "`date`" + `; posts sort newest first and
   undated posts sort last.
6. **Code blocks** should name their language (` + "```go" + `, ` + "```python" + `) so they
   are highlighted.

## Images

- Attach images with the ` + "`attach_image`" + ` tool. It returns a ` + "`markdownImage`" + `
  snippet ready to paste into the body.
- Images live in the flat ` + "`attachments/`" + ` directory and are referenced as
  ` + "`![alt](/attachments/name.png)`" + `.
- Supported formats: png, jpg, jpeg, gif, webp, svg.
`
