package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// mockSyncEngine is a mock implementation of driving.SyncEngine.
type mockSyncEngine struct {
	articles  []domain.Article
	cursor    time.Time
	settings  domain.Settings
	result    *domain.SyncResult
	err       error
	refreshes []bool
}

func (m *mockSyncEngine) Start(_ context.Context) error { return nil }

func (m *mockSyncEngine) Stop() error { return nil }

func (m *mockSyncEngine) Refresh(_ context.Context, force bool) (*domain.SyncResult, error) {
	m.refreshes = append(m.refreshes, force)
	if m.err != nil {
		return nil, m.err
	}
	m.cursor = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if m.result == nil {
		return &domain.SyncResult{Forced: force}, nil
	}
	return m.result, nil
}

func (m *mockSyncEngine) Articles() []domain.Article { return m.articles }

func (m *mockSyncEngine) Visible() []domain.Article { return m.articles }

func (m *mockSyncEngine) Cursor() time.Time { return m.cursor }

func (m *mockSyncEngine) Settings() domain.Settings { return m.settings }

func (m *mockSyncEngine) Reconfigure(settings domain.Settings) { m.settings = settings }

// mockActionService is a mock implementation of driving.ActionService.
type mockActionService struct {
	calls []string
	saved *domain.Article
	err   error
}

func (m *mockActionService) record(call string) error {
	m.calls = append(m.calls, call)
	return m.err
}

func (m *mockActionService) Archive(_ context.Context, _ int64) error { return m.record("archive") }

func (m *mockActionService) Unarchive(_ context.Context, _ int64) error { return m.record("unarchive") }

func (m *mockActionService) Star(_ context.Context, _ int64) error { return m.record("star") }

func (m *mockActionService) Unstar(_ context.Context, _ int64) error { return m.record("unstar") }

func (m *mockActionService) Delete(_ context.Context, _ int64) error { return m.record("delete") }

func (m *mockActionService) Rename(_ context.Context, _ int64, title string) error {
	return m.record("rename:" + title)
}

func (m *mockActionService) QuickSave(_ context.Context, url, title string) (*domain.Article, error) {
	if err := m.record("save:" + url + "|" + title); err != nil {
		return nil, err
	}
	if m.saved != nil {
		return m.saved, nil
	}
	return &domain.Article{ID: 1, URL: url, Title: title}, nil
}

func (m *mockActionService) CopyURL(_ context.Context, _ *domain.Article) error { return m.record("copy") }

func (m *mockActionService) Open(_ context.Context, _ *domain.Article) error { return m.record("open") }

func testArticles(n int) []domain.Article {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	out := make([]domain.Article, n)
	for i := range out {
		out[i] = domain.Article{
			ID:        int64(n - i),
			Title:     "Article",
			URL:       "https://example.org/post",
			Domain:    "example.org",
			IsStarred: i == 0,
			Tags:      []domain.Tag{{Label: "go"}},
			CreatedAt: created.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func newTestServer(sync *mockSyncEngine, actions *mockActionService) *Server {
	server, err := NewServer(&Ports{Sync: sync, Actions: actions})
	if err != nil {
		panic(err)
	}
	return server
}
