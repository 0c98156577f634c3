package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncEngine = (*SyncEngine)(nil)

// SyncEngine owns the local article collection and reconciles it with the
// server through incremental passes.
type SyncEngine struct {
	articles driving.ArticleService
	executor driving.Executor
	clock    driven.Clock
	events   emitter

	// passMu serialises passes. The poll loop only TryLocks it.
	passMu sync.Mutex

	// mu guards the committed state below.
	mu         sync.RWMutex
	collection []domain.Article
	cursor     time.Time
	settings   domain.Settings

	poll *poller
}

// NewSyncEngine creates a sync engine. A nil notifier drops events and a nil
// clock means the system clock.
func NewSyncEngine(
	articles driving.ArticleService,
	executor driving.Executor,
	notifier driven.Notifier,
	clock driven.Clock,
	settings domain.Settings,
) *SyncEngine {
	if notifier == nil {
		notifier = driven.NopNotifier{}
	}
	if clock == nil {
		clock = driven.SystemClock
	}
	e := &SyncEngine{
		articles: articles,
		executor: executor,
		clock:    clock,
		events:   emitter{notifier: notifier, clock: clock},
		settings: settings,
	}
	e.poll = newPoller(e, settings.RefreshInterval)
	return e
}

// Refresh runs one pass, waiting for any pass already in flight.
func (e *SyncEngine) Refresh(ctx context.Context, force bool) (*domain.SyncResult, error) {
	e.passMu.Lock()
	defer e.passMu.Unlock()
	return e.pass(ctx, force)
}

// tryRefresh runs a pass unless one is already in flight.
func (e *SyncEngine) tryRefresh(ctx context.Context) (*domain.SyncResult, error) {
	if !e.passMu.TryLock() {
		return nil, domain.ErrSyncInProgress
	}
	defer e.passMu.Unlock()
	return e.pass(ctx, false)
}

// pass performs one reconciliation. The caller holds passMu.
// Nothing is committed unless every step succeeds.
func (e *SyncEngine) pass(ctx context.Context, force bool) (*domain.SyncResult, error) {
	e.mu.RLock()
	previous := e.cursor
	base := cloneArticles(e.collection)
	settings := e.settings
	e.mu.RUnlock()

	// Until a pass has succeeded the whole list is an initial load, not
	// a batch of discoveries.
	if previous.IsZero() {
		force = true
	}
	if force {
		previous = time.Time{}
		base = nil
	}

	logger.Section("Sync pass")
	logger.Debug("forced=%v since=%v known=%d", force, previous, len(base))

	claimed := e.clock.Now()
	fetched, err := e.articles.ListRecent(ctx, previous, settings.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("sync pass: %w", err)
	}

	var removed []domain.Article
	if len(base) > 0 {
		keys := make([]string, 0, len(base))
		for i := range base {
			keys = append(keys, base[i].ExistenceKey())
		}
		deleted, err := e.articles.FindDeleted(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("sync pass: %w", err)
		}
		base, removed = pruneDeleted(base, deleted)
	}

	merged, added := mergeArticles(base, fetched)

	result := &domain.SyncResult{
		Forced:  force,
		Added:   added,
		Removed: removed,
		Changed: force || len(added) > 0 || len(removed) > 0,
		Cursor:  claimed,
	}

	e.mu.Lock()
	e.collection = merged
	e.cursor = claimed
	e.mu.Unlock()

	logger.Debug("added=%d removed=%d total=%d", len(added), len(removed), len(merged))

	if !force && settings.Notifications.ShowNewArticles {
		for i := range added {
			article := added[i]
			e.events.emit(domain.Event{Kind: domain.EventNewArticle, Article: &article})
		}
	}
	if result.Changed {
		e.events.emit(domain.Event{Kind: domain.EventArticlesChanged, Articles: cloneArticles(merged)})
	}

	return result, nil
}

// Articles returns a copy of the collection, newest first.
func (e *SyncEngine) Articles() []domain.Article {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneArticles(e.collection)
}

// Visible returns at most MaxArticles articles.
func (e *SyncEngine) Visible() []domain.Article {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := len(e.collection)
	if limit := e.settings.MaxArticles; limit > 0 && limit < n {
		n = limit
	}
	return cloneArticles(e.collection[:n])
}

// Cursor returns the instant claimed by the last successful pass.
func (e *SyncEngine) Cursor() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor
}

// Settings returns the settings the engine currently runs with.
func (e *SyncEngine) Settings() domain.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// Reconfigure applies new settings. Changed credentials reset the token and
// the poll timer is rebuilt with the new interval.
func (e *SyncEngine) Reconfigure(settings domain.Settings) {
	e.mu.Lock()
	credsChanged := e.settings.Credentials.Normalized() != settings.Credentials.Normalized()
	e.settings = settings
	e.mu.Unlock()

	if credsChanged {
		logger.Debug("Credentials changed, resetting token")
		e.executor.Reconfigure(settings.Credentials)
	}
	e.poll.reset(settings.RefreshInterval)
}

// Start runs the poll loop until ctx is cancelled or Stop is called.
func (e *SyncEngine) Start(ctx context.Context) error {
	return e.poll.start(ctx)
}

// Stop ends the poll loop and waits for an in-flight pass.
func (e *SyncEngine) Stop() error {
	return e.poll.stop()
}

// pruneDeleted removes articles whose existence key is in deleted, keeping
// relative order.
func pruneDeleted(base []domain.Article, deleted []string) (kept, removed []domain.Article) {
	if len(deleted) == 0 {
		return base, nil
	}
	gone := make(map[string]struct{}, len(deleted))
	for _, h := range deleted {
		gone[h] = struct{}{}
	}
	kept = make([]domain.Article, 0, len(base))
	for i := range base {
		if _, ok := gone[base[i].ExistenceKey()]; ok {
			removed = append(removed, base[i])
			continue
		}
		kept = append(kept, base[i])
	}
	return kept, removed
}

// mergeArticles prepends fetched articles not already present in base.
func mergeArticles(base, fetched []domain.Article) (merged, added []domain.Article) {
	seen := make(map[int64]struct{}, len(base)+len(fetched))
	for i := range base {
		seen[base[i].ID] = struct{}{}
	}
	for i := range fetched {
		if _, ok := seen[fetched[i].ID]; ok {
			continue
		}
		seen[fetched[i].ID] = struct{}{}
		added = append(added, fetched[i])
	}
	merged = make([]domain.Article, 0, len(added)+len(base))
	merged = append(merged, added...)
	merged = append(merged, base...)
	return merged, added
}

func cloneArticles(in []domain.Article) []domain.Article {
	if in == nil {
		return nil
	}
	out := make([]domain.Article, len(in))
	copy(out, in)
	return out
}
