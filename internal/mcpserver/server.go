// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes algonotes post tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/algonotes/internal/apperr"
	"github.com/starford/algonotes/internal/attachments"
	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/postservice"
)

const formatURI = "algonotes://post-format"

// Server wraps the MCP server with post tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *postservice.Service
	attach *attachments.Store
	fetch  fetcher
}

// New creates a new MCP server with all post tools registered.
func New(svc *postservice.Service, attach *attachments.Store, version string) *Server {
	s := &Server{svc: svc, attach: attach, fetch: fetchHTTP}

	s.mcp = server.NewMCPServer(
		"algonotes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List algorithm posts, newest first. All filters are optional."),
		mcp.WithString("tag", mcp.Description("Exact, case-sensitive tag")),
		mcp.WithString("difficulty", mcp.Description("easy, medium or hard"), mcp.Enum("easy", "medium", "hard")),
		mcp.WithString("query", mcp.Description("Case-insensitive substring of title, description or markdown")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read one post: metadata plus its Markdown body."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug, e.g. two-sum")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Create a new post. The slug is derived from the title; "+
			"read the format first via get_post_format or the "+formatURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body without frontmatter")),
		mcp.WithString("description", mcp.Description("One-line summary")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, e.g. \"graph, bfs\"")),
		mcp.WithString("difficulty", mcp.Description("easy, medium or hard"), mcp.Enum("easy", "medium", "hard")),
		mcp.WithString("date", mcp.Description("Publish date, e.g. 2024-01-15; defaults to today")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("update_post",
		mcp.WithDescription("Replace a post. Changing the title renames it to a new slug."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Current slug")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body without frontmatter")),
		mcp.WithString("description", mcp.Description("One-line summary")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("difficulty", mcp.Description("easy, medium or hard"), mcp.Enum("easy", "medium", "hard")),
		mcp.WithString("date", mcp.Description("Publish date; empty keeps the stored one")),
	), s.updatePost)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag in use, sorted."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the post format. Call this before creating or updating posts."),
	), s.getPostFormat)

	s.mcp.AddTool(mcp.NewTool("attach_image",
		mcp.WithDescription("Store an image for use in posts, from an http(s) URL or a base64 data URI. "+
			"Returns a markdownImage snippet to paste into the body."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:image/...;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.attachImage)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Post Format",
			mcp.WithResourceDescription("On-disk Markdown post format used by algonotes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type postView struct {
	models.PostSummary
	Content string `json:"content"`
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	posts, err := s.svc.List(ctx, postservice.Filter{
		Tag:        req.GetString("tag", ""),
		Difficulty: req.GetString("difficulty", ""),
		Query:      req.GetString("query", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(posts)
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.Get(ctx, slug)
	if err != nil {
		return toolError(err, slug), nil
	}
	return jsonResult(postView{PostSummary: post.PostSummary, Content: post.Content})
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := inputFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Create(ctx, in)
	if err != nil {
		return toolError(err, in.Title), nil
	}
	return jsonResult(res)
}

func (s *Server) updatePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := inputFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Update(ctx, slug, in)
	if err != nil {
		return toolError(err, slug), nil
	}
	return jsonResult(res)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags yet"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormat), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}

func inputFrom(req mcp.CallToolRequest) (postservice.Input, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return postservice.Input{}, err
	}
	content, err := req.RequireString("content")
	if err != nil {
		return postservice.Input{}, err
	}
	return postservice.Input{
		Title:       title,
		Content:     content,
		Description: req.GetString("description", ""),
		Tags:        splitTags(req.GetString("tags", "")),
		Difficulty:  req.GetString("difficulty", ""),
		Date:        req.GetString("date", ""),
	}, nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func toolError(err error, subject string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("post not found: %s", subject))
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError(fmt.Sprintf("a post with this title already exists: %s", subject))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}
