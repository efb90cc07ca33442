package desk

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/window"
)

// viewerPane shows one post rendered for the terminal.
type viewerPane struct {
	win  window.ID
	slug string
	post *models.Post
	err  error

	vp          viewport.Model
	renderWidth int
	confirming  bool
}

func newViewerPane(win window.ID, slug string) *viewerPane {
	return &viewerPane{win: win, slug: slug, vp: viewport.New(0, 0)}
}

func (p *viewerPane) setPost(post *models.Post, err error) {
	p.post, p.err = post, err
	if post != nil {
		p.slug = post.Slug
	}
	p.renderWidth = 0
}

func (p *viewerPane) Focus() {}

func (p *viewerPane) Blur() { p.confirming = false }

func (p *viewerPane) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok {
		if p.confirming {
			p.confirming = false
			if km.String() == "y" {
				slug := p.slug
				return func() tea.Msg { return deleteRequestMsg{slug: slug} }
			}
			return nil
		}
		switch km.String() {
		case "q", "esc":
			win := p.win
			return func() tea.Msg { return closeRequestMsg{win: win} }
		case "e":
			if p.post != nil {
				post := p.post
				return func() tea.Msg { return editRequestMsg{post: post} }
			}
			return nil
		case "D":
			if p.post != nil {
				p.confirming = true
			}
			return nil
		case "g", "home":
			p.vp.GotoTop()
			return nil
		case "G", "end":
			p.vp.GotoBottom()
			return nil
		}
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

func (p *viewerPane) View(width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	status := ""
	switch {
	case p.err != nil:
		return block(errorStyle.Render(" "+p.err.Error()), width, height)
	case p.post == nil:
		return block(mutedStyle.Render(" loading "+p.slug+"…"), width, height)
	case p.confirming:
		status = errorStyle.Render(fmt.Sprintf(" delete %s? y/n", p.slug))
	default:
		status = mutedStyle.Render(fmt.Sprintf(" %s  e edit · D delete · q close  %3.0f%%", metaLine(&p.post.PostSummary), p.vp.ScrollPercent()*100))
	}

	if p.renderWidth != width {
		p.vp.SetContent(renderMarkdown(p.post, width))
		p.renderWidth = width
	}
	p.vp.Width = width
	p.vp.Height = height - 1

	lines := block(p.vp.View(), width, height-1)
	return append(lines, fit(status, width))
}

func metaLine(post *models.PostSummary) string {
	var parts []string
	if post.Date != nil {
		parts = append(parts, *post.Date)
	}
	if post.Difficulty != nil {
		parts = append(parts, *post.Difficulty)
	}
	if len(post.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(post.Tags, " #"))
	}
	return strings.Join(parts, " · ")
}

// renderMarkdown formats a post for the terminal. Rendering errors fall
// back to the raw markdown.
func renderMarkdown(post *models.Post, width int) string {
	var src strings.Builder
	fmt.Fprintf(&src, "# %s\n\n", post.Title)
	if post.Description != "" {
		fmt.Fprintf(&src, "> %s\n\n", post.Description)
	}
	src.WriteString(post.Content)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 10)),
	)
	if err != nil {
		return src.String()
	}
	out, err := r.Render(src.String())
	if err != nil {
		return src.String()
	}
	return strings.Trim(out, "\n")
}
