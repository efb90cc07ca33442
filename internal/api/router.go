package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/algonotes/internal/attachments"
	"github.com/starford/algonotes/internal/postservice"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// Attachments stores uploaded images.
	Attachments *attachments.Store
	// CORSOrigins lists allowed browser origins; empty allows all.
	CORSOrigins []string
}

// NewRouter creates a chi router with all API routes mounted. It is meant
// to be mounted under /api.
func NewRouter(svc *postservice.Service, opts RouterOptions) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(opts.Attachments)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(opts.CORSOrigins))

	// Unauthenticated probe.
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

		r.Get("/posts", h.ListPosts)
		r.Post("/posts", h.CreatePost)
		r.Get("/posts/{slug}", h.GetPost)
		r.Put("/posts/{slug}", h.UpdatePost)
		r.Delete("/posts/{slug}", h.DeletePost)

		r.Get("/tags", h.ListTags)
		r.Get("/difficulties", h.ListDifficulties)

		r.Post("/attachments", ah.Upload)

		if opts.Events != nil {
			r.Get("/events", opts.Events.ServeHTTP)
		}
	})

	return r
}
