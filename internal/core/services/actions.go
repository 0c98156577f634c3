package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

// Ensure ActionService implements the interface.
var _ driving.ActionService = (*ActionService)(nil)

// ActionService runs per-article actions on behalf of the UI.
type ActionService struct {
	articles driving.ArticleService
	sync     driving.SyncEngine
	desktop  driven.Desktop
	events   emitter
}

// NewActionService creates a new action service.
func NewActionService(
	articles driving.ArticleService,
	sync driving.SyncEngine,
	notifier driven.Notifier,
	desktop driven.Desktop,
	clock driven.Clock,
) *ActionService {
	if clock == nil {
		clock = driven.SystemClock
	}
	return &ActionService{
		articles: articles,
		sync:     sync,
		desktop:  desktop,
		events:   emitter{notifier: notifier, clock: clock},
	}
}

// Archive marks an article as read.
func (s *ActionService) Archive(ctx context.Context, id int64) error {
	return s.mutate(ctx, domain.FailureToggle, func() error {
		_, err := s.articles.MarkRead(ctx, id)
		return err
	})
}

// Unarchive moves an article back to the unread list.
func (s *ActionService) Unarchive(ctx context.Context, id int64) error {
	return s.mutate(ctx, domain.FailureToggle, func() error {
		_, err := s.articles.MarkUnread(ctx, id)
		return err
	})
}

// Star marks an article as favourite.
func (s *ActionService) Star(ctx context.Context, id int64) error {
	return s.mutate(ctx, domain.FailureToggle, func() error {
		_, err := s.articles.Star(ctx, id)
		return err
	})
}

// Unstar removes the favourite mark.
func (s *ActionService) Unstar(ctx context.Context, id int64) error {
	return s.mutate(ctx, domain.FailureToggle, func() error {
		_, err := s.articles.Unstar(ctx, id)
		return err
	})
}

// Delete removes an article from the server.
func (s *ActionService) Delete(ctx context.Context, id int64) error {
	return s.mutate(ctx, domain.FailureDelete, func() error {
		return s.articles.Delete(ctx, id)
	})
}

// Rename changes an article's title.
func (s *ActionService) Rename(ctx context.Context, id int64, title string) error {
	return s.mutate(ctx, domain.FailureRename, func() error {
		_, err := s.articles.Rename(ctx, id, title)
		return err
	})
}

// QuickSave saves url. A non-empty title is sent as both title and content.
func (s *ActionService) QuickSave(ctx context.Context, url, title string) (*domain.Article, error) {
	settings := s.sync.Settings()
	title = strings.TrimSpace(title)

	var saved *domain.Article
	err := s.mutate(ctx, domain.FailureSave, func() error {
		var err error
		saved, err = s.articles.Save(ctx, domain.SaveRequest{
			URL:         url,
			Title:       title,
			Content:     title,
			AllowResave: settings.ResaveOnFailure,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if settings.Notifications.ShowInfo {
		s.events.emit(domain.Event{Kind: domain.EventInfo, Message: "Article saved", Article: saved})
	}
	return saved, nil
}

// CopyURL copies the article URL to the system clipboard.
func (s *ActionService) CopyURL(_ context.Context, article *domain.Article) error {
	if article == nil || article.URL == "" {
		err := fmt.Errorf("%w: article has no url", domain.ErrInvalidInput)
		s.events.failed(domain.FailureCopy, err)
		return err
	}
	if s.desktop == nil {
		err := errors.New("no clipboard available")
		s.events.failed(domain.FailureCopy, err)
		return err
	}
	if err := s.desktop.CopyText(article.URL); err != nil {
		s.events.failed(domain.FailureCopy, err)
		return fmt.Errorf("copy url: %w", err)
	}

	if s.sync.Settings().Notifications.ShowInfo {
		s.events.emit(domain.Event{Kind: domain.EventInfo, Message: "URL copied to clipboard", Article: article})
	}
	return nil
}

// Open opens the article URL in the default browser.
func (s *ActionService) Open(_ context.Context, article *domain.Article) error {
	if article == nil || article.URL == "" {
		return fmt.Errorf("%w: article has no url", domain.ErrInvalidInput)
	}
	if s.desktop == nil {
		return errors.New("no browser available")
	}
	return s.desktop.OpenURL(article.URL)
}

// mutate runs op, reports a failure as kind and refreshes the list on success.
func (s *ActionService) mutate(ctx context.Context, kind domain.FailureKind, op func() error) error {
	if err := op(); err != nil {
		logger.Warn("%s: %v", kind.Message(), err)
		s.events.failed(kind, err)
		return err
	}

	if _, err := s.sync.Refresh(ctx, false); err != nil {
		// The action itself succeeded; the next poll will catch up.
		if !errors.Is(err, context.Canceled) {
			s.events.failed(domain.FailureFetch, err)
		}
	}
	return nil
}
