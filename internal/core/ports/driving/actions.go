package driving

import (
	"context"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// ActionService provides the per-article actions offered by the UI.
// Failures are reported to the notifier with a FailureKind and returned.
// Successful mutations trigger an incremental refresh.
type ActionService interface {
	Archive(ctx context.Context, id int64) error
	Unarchive(ctx context.Context, id int64) error
	Star(ctx context.Context, id int64) error
	Unstar(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Rename(ctx context.Context, id int64, title string) error

	// QuickSave saves url with an optional title.
	QuickSave(ctx context.Context, url, title string) (*domain.Article, error)

	// CopyURL copies the article URL to the system clipboard.
	CopyURL(ctx context.Context, article *domain.Article) error

	// Open opens the article URL in the default browser.
	Open(ctx context.Context, article *domain.Article) error
}
