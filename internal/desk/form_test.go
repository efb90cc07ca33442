package desk

import (
	"fmt"
	"net/http"
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/algonotes/internal/apperr"
	"github.com/starford/algonotes/internal/client"
	"github.com/starford/algonotes/internal/models"
)

func TestFormPane_Prefill(t *testing.T) {
	diff, date := "medium", "2024-03-01"
	p := newFormPane(3, &models.Post{
		PostSummary: models.PostSummary{
			Slug:       "two-sum",
			Title:      "Two Sum",
			Tags:       []string{"array", "hash"},
			Difficulty: &diff,
			Date:       &date,
		},
		Content: "body",
	})

	if p.slug != "two-sum" {
		t.Errorf("slug = %q", p.slug)
	}
	in := p.input()
	want := client.PostInput{
		Title:      "Two Sum",
		Content:    "body",
		Tags:       []string{"array", "hash"},
		Difficulty: "medium",
		Date:       "2024-03-01",
	}
	if !reflect.DeepEqual(in, want) {
		t.Errorf("input = %+v, want %+v", in, want)
	}
}

func TestFormPane_InputTrimsTags(t *testing.T) {
	p := newFormPane(1, nil)
	p.inputs[fieldTitle].SetValue("  Heap Sort ")
	p.inputs[fieldTags].SetValue(" heap, , sorting ,")

	in := p.input()
	if in.Title != "Heap Sort" {
		t.Errorf("title = %q", in.Title)
	}
	if !reflect.DeepEqual(in.Tags, []string{"heap", "sorting"}) {
		t.Errorf("tags = %q", in.Tags)
	}
}

func TestFormPane_SubmitRequiresTitleAndContent(t *testing.T) {
	p := newFormPane(1, nil)
	p.inputs[fieldTitle].SetValue("Heap Sort")

	if cmd := p.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Fatal("submit without content should not send")
	}
	if !p.failed || p.status == "" {
		t.Errorf("status = %q, failed = %v", p.status, p.failed)
	}
}

func TestFormPane_Submit(t *testing.T) {
	p := newFormPane(4, nil)
	p.inputs[fieldTitle].SetValue("Heap Sort")
	p.content.SetValue("# Heap sort")

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg, ok := cmd().(submitMsg)
	if !ok {
		t.Fatalf("got %T, want submitMsg", cmd())
	}
	if msg.win != 4 || msg.slug != "" || msg.in.Title != "Heap Sort" {
		t.Errorf("submit = %+v", msg)
	}

	// A second submit while saving is ignored.
	if cmd := p.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Error("double submit sent twice")
	}
}

func TestFormPane_FocusCycles(t *testing.T) {
	p := newFormPane(1, nil)
	p.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if p.focus != fieldContent {
		t.Errorf("shift+tab from title: focus = %d, want content", p.focus)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if p.focus != fieldTitle {
		t.Errorf("tab from content: focus = %d, want title", p.focus)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.focus != fieldDescription {
		t.Errorf("enter: focus = %d, want description", p.focus)
	}

	p.Update(tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if p.focus != fieldDifficulty {
		t.Errorf("click row 3: focus = %d, want difficulty", p.focus)
	}
	p.Update(tea.MouseMsg{X: 10, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if p.focus != fieldContent {
		t.Errorf("click below fields: focus = %d, want content", p.focus)
	}
}

func TestFormPane_Saved(t *testing.T) {
	p := newFormPane(1, nil)
	p.saving = true

	p.saved(&client.APIError{Status: http.StatusBadRequest, Message: "title: cannot be blank."})
	if p.saving || !p.failed || p.status != "title: cannot be blank." {
		t.Errorf("api error: saving=%v failed=%v status=%q", p.saving, p.failed, p.status)
	}

	p.saved(fmt.Errorf("create: %w", apperr.ErrConflict))
	if p.status != "a post with the same title already exists" {
		t.Errorf("conflict: status = %q", p.status)
	}

	p.saved(nil)
	if p.failed || p.status != "saved" {
		t.Errorf("ok: failed=%v status=%q", p.failed, p.status)
	}
}

func TestFormPane_ViewSize(t *testing.T) {
	p := newFormPane(1, nil)
	lines := p.View(50, 14)
	if len(lines) != 14 {
		t.Fatalf("got %d lines, want 14", len(lines))
	}
}
