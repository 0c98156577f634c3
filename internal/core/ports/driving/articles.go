package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// ArticleService exposes the server's article operations.
// Errors from the executor and transport are surfaced unchanged.
type ArticleService interface {
	// ListRecent returns up to limit articles created after since (zero means
	// no lower bound), newest first. Returns an empty slice when nothing matches.
	ListRecent(ctx context.Context, since time.Time, limit int) ([]domain.Article, error)

	// Get fetches a single article.
	Get(ctx context.Context, id int64) (*domain.Article, error)

	// Save submits a new article, applying the delete-and-resave workaround
	// once when req.AllowResave is set and the server could not fetch the page.
	Save(ctx context.Context, req domain.SaveRequest) (*domain.Article, error)

	Delete(ctx context.Context, id int64) error
	MarkRead(ctx context.Context, id int64) (*domain.Article, error)
	MarkUnread(ctx context.Context, id int64) (*domain.Article, error)
	Star(ctx context.Context, id int64) (*domain.Article, error)
	Unstar(ctx context.Context, id int64) (*domain.Article, error)

	// ToggleStar reads the article's current state and flips it.
	ToggleStar(ctx context.Context, id int64) (*domain.Article, error)

	// Rename changes the title. An empty title is rejected with
	// domain.ErrInvalidInput before any request.
	Rename(ctx context.Context, id int64, title string) (*domain.Article, error)

	// FindDeleted returns the subset of hashedURLs the server no longer has.
	FindDeleted(ctx context.Context, hashedURLs []string) ([]string, error)
}
