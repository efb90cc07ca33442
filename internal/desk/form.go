package desk

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/algonotes/internal/apperr"
	"github.com/starford/algonotes/internal/client"
	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/window"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldTags
	fieldDifficulty
	fieldDate
	fieldContent
	fieldCount
)

var fieldLabels = [...]string{"Title", "Desc", "Tags", "Level", "Date"}

// formPane writes a new post or edits an existing one.
type formPane struct {
	win  window.ID
	slug string // empty when writing a new post

	inputs  [fieldContent]textinput.Model
	content textarea.Model
	focus   int
	saving  bool
	status  string
	failed  bool
}

func newFormPane(win window.ID, post *models.Post) *formPane {
	p := &formPane{win: win}
	placeholders := [...]string{"Two Sum", "one-line summary", "array, hash", "easy | medium | hard", "YYYY-MM-DD (default today)"}
	for i := range p.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		p.inputs[i] = ti
	}
	p.content = textarea.New()
	p.content.Placeholder = "Markdown body…"
	p.content.ShowLineNumbers = false
	p.content.CharLimit = 0
	p.content.MaxHeight = 0

	if post != nil {
		p.slug = post.Slug
		p.inputs[fieldTitle].SetValue(post.Title)
		p.inputs[fieldDescription].SetValue(post.Description)
		p.inputs[fieldTags].SetValue(strings.Join(post.Tags, ", "))
		if post.Difficulty != nil {
			p.inputs[fieldDifficulty].SetValue(*post.Difficulty)
		}
		if post.Date != nil {
			p.inputs[fieldDate].SetValue(*post.Date)
		}
		p.content.SetValue(post.Content)
	}
	p.setFocus(fieldTitle)
	return p
}

// input collects the form values.
func (p *formPane) input() client.PostInput {
	var tags []string
	for _, t := range strings.Split(p.inputs[fieldTags].Value(), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return client.PostInput{
		Title:       strings.TrimSpace(p.inputs[fieldTitle].Value()),
		Description: strings.TrimSpace(p.inputs[fieldDescription].Value()),
		Content:     p.content.Value(),
		Tags:        tags,
		Difficulty:  strings.TrimSpace(p.inputs[fieldDifficulty].Value()),
		Date:        strings.TrimSpace(p.inputs[fieldDate].Value()),
	}
}

func (p *formPane) setFocus(i int) {
	p.focus = (i + fieldCount) % fieldCount
	for j := range p.inputs {
		if j == p.focus {
			p.inputs[j].Focus()
		} else {
			p.inputs[j].Blur()
		}
	}
	if p.focus == fieldContent {
		p.content.Focus()
	} else {
		p.content.Blur()
	}
}

func (p *formPane) Focus() { p.setFocus(p.focus) }

func (p *formPane) Blur() {
	for j := range p.inputs {
		p.inputs[j].Blur()
	}
	p.content.Blur()
}

// saved reports the outcome of a submit.
func (p *formPane) saved(err error) {
	p.saving = false
	if err == nil {
		p.status, p.failed = "saved", false
		return
	}
	p.failed = true
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		p.status = apiErr.Message
	case errors.Is(err, apperr.ErrConflict):
		p.status = "a post with the same title already exists"
	default:
		p.status = err.Error()
	}
}

func (p *formPane) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+s":
			if p.saving {
				return nil
			}
			in := p.input()
			if in.Title == "" || strings.TrimSpace(in.Content) == "" {
				p.status, p.failed = "title and content are required", true
				return nil
			}
			p.saving, p.status, p.failed = true, "saving…", false
			req := submitMsg{win: p.win, slug: p.slug, in: in}
			return func() tea.Msg { return req }
		case "tab":
			p.setFocus(p.focus + 1)
			return nil
		case "shift+tab":
			p.setFocus(p.focus - 1)
			return nil
		case "esc":
			win := p.win
			return func() tea.Msg { return closeRequestMsg{win: win} }
		case "enter":
			if p.focus != fieldContent {
				p.setFocus(p.focus + 1)
				return nil
			}
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			// Rows map one to one onto fields until the content area.
			p.setFocus(min(msg.Y, fieldContent))
			return nil
		}
	}

	var cmd tea.Cmd
	if p.focus == fieldContent {
		p.content, cmd = p.content.Update(msg)
	} else {
		p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	}
	return cmd
}

func (p *formPane) View(width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	const labelWidth = 7
	lines := make([]string, 0, height)
	for i := range p.inputs {
		label := mutedStyle.Render(fit(" "+fieldLabels[i], labelWidth))
		if i == p.focus {
			label = headerStyle.Render(fit("▸"+fieldLabels[i], labelWidth))
		}
		p.inputs[i].Width = max(width-labelWidth-1, 1)
		lines = append(lines, fit(label+p.inputs[i].View(), width))
	}

	status := mutedStyle.Render(" ctrl+s save · tab next field · esc close")
	if p.status != "" {
		if p.failed {
			status = errorStyle.Render(" " + p.status)
		} else {
			status = mutedStyle.Render(" " + p.status)
		}
	}

	areaHeight := height - len(lines) - 1
	if areaHeight > 0 {
		p.content.SetWidth(width)
		p.content.SetHeight(areaHeight)
		lines = append(lines, block(p.content.View(), width, areaHeight)...)
	}
	lines = append(lines, fit(status, width))
	return block(strings.Join(lines, "\n"), width, height)
}
