package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// defaultListLimit applies when neither the input nor the settings give one.
const defaultListLimit = 10

// ArticleOutput is the tool view of an article.
type ArticleOutput struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Domain    string   `json:"domain,omitempty"`
	Archived  bool     `json:"archived"`
	Starred   bool     `json:"starred"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// ListInput is the input schema for list_articles.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of articles to return (default display.max_articles)"`
}

// ListOutput is the output schema for list_articles.
type ListOutput struct {
	Articles []ArticleOutput `json:"articles"`
	Count    int             `json:"count"`
}

// RefreshInput is the input schema for refresh_articles.
type RefreshInput struct {
	Force bool `json:"force,omitempty" jsonschema:"reload every article instead of fetching only new ones"`
}

// RefreshOutput is the output schema for refresh_articles.
type RefreshOutput struct {
	Added   []ArticleOutput `json:"added"`
	Removed int             `json:"removed"`
	Total   int             `json:"total"`
}

// SaveInput is the input schema for save_article.
type SaveInput struct {
	URL   string `json:"url" jsonschema:"the URL of the page to save"`
	Title string `json:"title,omitempty" jsonschema:"optional title to store with the article"`
}

// ArchiveInput is the input schema for archive_article.
type ArchiveInput struct {
	ID       int64 `json:"id" jsonschema:"the article id"`
	Archived bool  `json:"archived" jsonschema:"true to mark as read, false to move back to unread"`
}

// StarInput is the input schema for star_article.
type StarInput struct {
	ID      int64 `json:"id" jsonschema:"the article id"`
	Starred bool  `json:"starred" jsonschema:"true to star, false to unstar"`
}

// RenameInput is the input schema for rename_article.
type RenameInput struct {
	ID    int64  `json:"id" jsonschema:"the article id"`
	Title string `json:"title" jsonschema:"the new title"`
}

// DeleteInput is the input schema for delete_article.
type DeleteInput struct {
	ID int64 `json:"id" jsonschema:"the article id"`
}

// ActionOutput reports the outcome of a mutation.
type ActionOutput struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// registerTools registers the tool handlers with the MCP server. Mutation
// tools whose display button is turned off are left out.
func (s *Server) registerTools() {
	buttons := s.ports.Sync.Settings().Buttons

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_articles",
		Description: "List the most recent saved articles, newest first",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh_articles",
		Description: "Synchronise the article list with the server",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_article",
		Description: "Save a URL to read later",
	}, s.handleSave)

	if buttons.Archive {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "archive_article",
			Description: "Mark an article as read or move it back to unread",
		}, s.handleArchive)
	}

	if buttons.Star {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "star_article",
			Description: "Star or unstar an article",
		}, s.handleStar)
	}

	if buttons.EditTitle {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "rename_article",
			Description: "Change the title of an article",
		}, s.handleRename)
	}

	if buttons.Delete {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "delete_article",
			Description: "Delete an article from the server",
		}, s.handleDelete)
	}
}

// handleList returns the current collection, loading it on first use.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, ListOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.ports.Sync.Settings().MaxArticles
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	articles := s.ports.Sync.Articles()
	if len(articles) > limit {
		articles = articles[:limit]
	}

	output := ListOutput{
		Articles: toOutputs(articles),
		Count:    len(articles),
	}
	return nil, output, nil
}

// handleRefresh runs one sync pass.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	result, err := s.ports.Sync.Refresh(ctx, input.Force)
	if err != nil {
		return nil, RefreshOutput{}, err
	}

	return nil, RefreshOutput{
		Added:   toOutputs(result.Added),
		Removed: len(result.Removed),
		Total:   len(s.ports.Sync.Articles()),
	}, nil
}

// handleSave saves a URL.
func (s *Server) handleSave(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveInput,
) (*mcp.CallToolResult, ArticleOutput, error) {
	article, err := s.ports.Actions.QuickSave(ctx, input.URL, input.Title)
	if err != nil {
		return nil, ArticleOutput{}, err
	}
	return nil, toOutput(article), nil
}

func (s *Server) handleArchive(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ArchiveInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	if input.Archived {
		return actionResult(input.ID, "archived", s.ports.Actions.Archive(ctx, input.ID))
	}
	return actionResult(input.ID, "unarchived", s.ports.Actions.Unarchive(ctx, input.ID))
}

func (s *Server) handleStar(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StarInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	if input.Starred {
		return actionResult(input.ID, "starred", s.ports.Actions.Star(ctx, input.ID))
	}
	return actionResult(input.ID, "unstarred", s.ports.Actions.Unstar(ctx, input.ID))
}

func (s *Server) handleRename(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenameInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	return actionResult(input.ID, "renamed", s.ports.Actions.Rename(ctx, input.ID, input.Title))
}

func (s *Server) handleDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	return actionResult(input.ID, "deleted", s.ports.Actions.Delete(ctx, input.ID))
}

// ensureLoaded runs a first pass when no pass has succeeded yet.
func (s *Server) ensureLoaded(ctx context.Context) error {
	if !s.ports.Sync.Cursor().IsZero() {
		return nil
	}
	if _, err := s.ports.Sync.Refresh(ctx, false); err != nil {
		return fmt.Errorf("loading articles: %w", err)
	}
	return nil
}

func actionResult(id int64, status string, err error) (*mcp.CallToolResult, ActionOutput, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ActionOutput{}, fmt.Errorf("no article with id %d: %w", id, err)
	}
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{ID: id, Status: status}, nil
}

func toOutputs(articles []domain.Article) []ArticleOutput {
	out := make([]ArticleOutput, len(articles))
	for i := range articles {
		out[i] = toOutput(&articles[i])
	}
	return out
}

func toOutput(a *domain.Article) ArticleOutput {
	out := ArticleOutput{
		ID:       a.ID,
		Title:    a.Title,
		URL:      a.URL,
		Domain:   a.Domain,
		Archived: a.IsArchived,
		Starred:  a.IsStarred,
	}
	for _, t := range a.Tags {
		out.Tags = append(out.Tags, t.Label)
	}
	if !a.CreatedAt.IsZero() {
		out.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return out
}
