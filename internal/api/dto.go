package api

import (
	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/postservice"
)

// PostRequest is the request body for creating or updating a post.
type PostRequest = postservice.Input

// PostListResponse wraps post listings.
type PostListResponse struct {
	Posts []models.PostSummary `json:"posts" validate:"required"`
}

// TagsResponse wraps the tag list.
type TagsResponse struct {
	Tags []string `json:"tags" example:"graph,dp" validate:"required"`
}

// DifficultiesResponse wraps the difficulty list.
type DifficultiesResponse struct {
	Difficulties []string `json:"difficulties" example:"easy,hard" validate:"required"`
}

// WriteResponse is returned after a successful create or update.
type WriteResponse struct {
	Success  bool   `json:"success" example:"true" validate:"required"`
	Slug     string `json:"slug" example:"two-sum" validate:"required"`
	Filename string `json:"filename" example:"two-sum.md" validate:"required"`
}

// SuccessResponse is returned by operations without a payload.
type SuccessResponse struct {
	Success bool `json:"success" example:"true" validate:"required"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	OK bool `json:"ok" example:"true" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"graph.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/graph.png" validate:"required"`
}
