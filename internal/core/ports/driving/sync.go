package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// SyncEngine owns the local article collection and keeps it in step with the
// server. Only one pass runs at a time.
type SyncEngine interface {
	Scheduler

	// Refresh runs one pass. A forced pass reloads from scratch and emits no
	// new-article events.
	Refresh(ctx context.Context, force bool) (*domain.SyncResult, error)

	// Articles returns a copy of the collection, newest first.
	Articles() []domain.Article

	// Visible returns the first MaxArticles articles of the collection.
	Visible() []domain.Article

	// Cursor returns the instant of the last successful pass (zero if none).
	Cursor() time.Time

	// Settings returns the settings currently in effect.
	Settings() domain.Settings

	// Reconfigure applies new settings: credentials (token reset), poll
	// interval (timer rebuild) and notification toggles.
	Reconfigure(settings domain.Settings)
}
