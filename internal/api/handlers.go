package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/algonotes/internal/postservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Health handles GET /api/health.
//
//	@Summary		Liveness probe
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true})
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			tag			query		string	false	"Exact tag (case-sensitive)"
//	@Param			difficulty	query		string	false	"Difficulty"	Enums(easy, medium, hard)
//	@Param			q			query		string	false	"Case-insensitive substring of title, description and markdown"
//	@Success		200			{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	posts, err := h.svc.List(r.Context(), postservice.Filter{
		Tag:        q.Get("tag"),
		Difficulty: q.Get("difficulty"),
		Query:      q.Get("q"),
	})
	if err != nil {
		writeServiceError(w, "list posts", "", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts})
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a single post with rendered HTML
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	models.Post
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.svc.Get(r.Context(), slug)
	if err != nil {
		writeServiceError(w, "get post", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /api/posts.
//
//	@Summary		Create a post; the slug is derived from the title
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PostRequest	true	"Post to create"
//	@Success		200		{object}	WriteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePost(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, "create post", "", err)
		return
	}
	slog.Info("post created", slog.String("slug", res.Slug))
	writeJSON(w, http.StatusOK, WriteResponse{Success: true, Slug: res.Slug, Filename: res.Filename})
}

// UpdatePost handles PUT /api/posts/{slug}.
//
//	@Summary		Update a post; a new title renames it
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string		true	"Post slug"
//	@Param			body	body		PostRequest	true	"Updated post"
//	@Success		200		{object}	WriteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [put]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	req, ok := decodePost(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Update(r.Context(), slug, req)
	if err != nil {
		writeServiceError(w, "update post", slug, err)
		return
	}
	slog.Info("post updated", slog.String("slug", slug), slog.String("new_slug", res.Slug))
	writeJSON(w, http.StatusOK, WriteResponse{Success: true, Slug: res.Slug, Filename: res.Filename})
}

// DeletePost handles DELETE /api/posts/{slug}.
//
//	@Summary		Delete a post
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	SuccessResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.svc.Delete(r.Context(), slug); err != nil {
		writeServiceError(w, "delete post", slug, err)
		return
	}
	slog.Info("post deleted", slog.String("slug", slug))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// ListTags handles GET /api/tags.
//
//	@Summary		All tags in use, sorted
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeServiceError(w, "list tags", "", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// ListDifficulties handles GET /api/difficulties.
//
//	@Summary		All difficulties in use, sorted
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	DifficultiesResponse
//	@Security		BearerAuth
//	@Router			/difficulties [get]
func (h *Handler) ListDifficulties(w http.ResponseWriter, r *http.Request) {
	diffs, err := h.svc.Difficulties(r.Context())
	if err != nil {
		writeServiceError(w, "list difficulties", "", err)
		return
	}
	writeJSON(w, http.StatusOK, DifficultiesResponse{Difficulties: diffs})
}

func decodePost(w http.ResponseWriter, r *http.Request) (PostRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body struct {
		PostRequest
		Tags json.RawMessage `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return PostRequest{}, false
	}
	req := body.PostRequest
	req.Tags = lenientTags(body.Tags)
	return req, true
}

// lenientTags reads a JSON array of tags. Anything that is not an array
// means no tags; non-string elements are dropped.
func lenientTags(raw json.RawMessage) []string {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}
