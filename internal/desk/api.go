package desk

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/algonotes/internal/client"
	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/window"
)

// API is the part of the content API the desk uses. *client.Client
// implements it.
type API interface {
	ListPosts(ctx context.Context, f client.Filter) ([]models.PostSummary, error)
	GetPost(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, in client.PostInput) (*client.WriteResult, error)
	UpdatePost(ctx context.Context, slug string, in client.PostInput) (*client.WriteResult, error)
	DeletePost(ctx context.Context, slug string) error
	Events(ctx context.Context) (<-chan client.Event, error)
}

var _ API = (*client.Client)(nil)

type postsLoadedMsg struct {
	posts []models.PostSummary
	err   error
}

type postLoadedMsg struct {
	win  window.ID
	post *models.Post
	err  error
}

type savedMsg struct {
	win window.ID
	res *client.WriteResult
	err error
}

type deletedMsg struct {
	slug string
	err  error
}

type eventsReadyMsg struct {
	ch <-chan client.Event
}

type eventMsg struct {
	ev client.Event
	ch <-chan client.Event
}

// Messages panes send to the desk.
type (
	submitMsg struct {
		win  window.ID
		slug string // empty for a new post
		in   client.PostInput
	}
	editRequestMsg struct {
		post *models.Post
	}
	deleteRequestMsg struct {
		slug string
	}
	closeRequestMsg struct {
		win window.ID
	}
)

func loadPosts(ctx context.Context, api API, f client.Filter) tea.Cmd {
	return func() tea.Msg {
		posts, err := api.ListPosts(ctx, f)
		return postsLoadedMsg{posts: posts, err: err}
	}
}

func loadPost(ctx context.Context, api API, win window.ID, slug string) tea.Cmd {
	return func() tea.Msg {
		post, err := api.GetPost(ctx, slug)
		return postLoadedMsg{win: win, post: post, err: err}
	}
}

func savePost(ctx context.Context, api API, req submitMsg) tea.Cmd {
	return func() tea.Msg {
		var res *client.WriteResult
		var err error
		if req.slug == "" {
			res, err = api.CreatePost(ctx, req.in)
		} else {
			res, err = api.UpdatePost(ctx, req.slug, req.in)
		}
		return savedMsg{win: req.win, res: res, err: err}
	}
}

func deletePost(ctx context.Context, api API, slug string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{slug: slug, err: api.DeletePost(ctx, slug)}
	}
}

func subscribe(ctx context.Context, api API) tea.Cmd {
	return func() tea.Msg {
		ch, err := api.Events(ctx)
		if err != nil {
			return nil
		}
		return eventsReadyMsg{ch: ch}
	}
}

func waitEvent(ch <-chan client.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{ev: ev, ch: ch}
	}
}
