package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

// mockSync implements driving.SyncEngine.
type mockSync struct {
	articles  []domain.Article
	visible   []domain.Article
	settings  domain.Settings
	result    *domain.SyncResult
	err       error
	refreshes []bool
	started   bool
	stopped   bool
}

func (m *mockSync) Start(ctx context.Context) error {
	m.started = true
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockSync) Stop() error {
	m.stopped = true
	return nil
}

func (m *mockSync) Refresh(_ context.Context, force bool) (*domain.SyncResult, error) {
	m.refreshes = append(m.refreshes, force)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.SyncResult{Forced: force}, nil
}

func (m *mockSync) Articles() []domain.Article { return m.articles }

func (m *mockSync) Visible() []domain.Article {
	if m.visible != nil {
		return m.visible
	}
	return m.articles
}

func (m *mockSync) Cursor() time.Time { return time.Time{} }

func (m *mockSync) Settings() domain.Settings { return m.settings }

func (m *mockSync) Reconfigure(settings domain.Settings) { m.settings = settings }

// mockArticles implements driving.ArticleService; only Get is used by commands.
type mockArticles struct {
	article *domain.Article
	err     error
}

func (m *mockArticles) ListRecent(context.Context, time.Time, int) ([]domain.Article, error) {
	return nil, nil
}

func (m *mockArticles) Get(_ context.Context, id int64) (*domain.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	a := *m.article
	a.ID = id
	return &a, nil
}

func (m *mockArticles) Save(context.Context, domain.SaveRequest) (*domain.Article, error) {
	return nil, nil
}

func (m *mockArticles) Delete(context.Context, int64) error { return nil }

func (m *mockArticles) MarkRead(context.Context, int64) (*domain.Article, error) { return nil, nil }

func (m *mockArticles) MarkUnread(context.Context, int64) (*domain.Article, error) { return nil, nil }

func (m *mockArticles) Star(context.Context, int64) (*domain.Article, error) { return nil, nil }

func (m *mockArticles) Unstar(context.Context, int64) (*domain.Article, error) { return nil, nil }

func (m *mockArticles) ToggleStar(context.Context, int64) (*domain.Article, error) { return nil, nil }

func (m *mockArticles) Rename(context.Context, int64, string) (*domain.Article, error) {
	return nil, nil
}

func (m *mockArticles) FindDeleted(context.Context, []string) ([]string, error) { return nil, nil }

// mockActions implements driving.ActionService and records calls.
type mockActions struct {
	calls []string
	err   error
}

func (m *mockActions) record(call string) error {
	m.calls = append(m.calls, call)
	return m.err
}

func (m *mockActions) Archive(_ context.Context, id int64) error { return m.record(call("archive", id)) }

func (m *mockActions) Unarchive(_ context.Context, id int64) error {
	return m.record(call("unarchive", id))
}

func (m *mockActions) Star(_ context.Context, id int64) error { return m.record(call("star", id)) }

func (m *mockActions) Unstar(_ context.Context, id int64) error { return m.record(call("unstar", id)) }

func (m *mockActions) Delete(_ context.Context, id int64) error { return m.record(call("delete", id)) }

func (m *mockActions) Rename(_ context.Context, id int64, title string) error {
	return m.record(call("rename", id) + ":" + title)
}

func (m *mockActions) QuickSave(_ context.Context, url, title string) (*domain.Article, error) {
	if err := m.record("save:" + url + "|" + title); err != nil {
		return nil, err
	}
	return &domain.Article{ID: 42, URL: url, Title: title}, nil
}

func (m *mockActions) CopyURL(_ context.Context, a *domain.Article) error {
	return m.record("copy:" + a.URL)
}

func (m *mockActions) Open(_ context.Context, a *domain.Article) error {
	return m.record("open:" + a.URL)
}

func call(name string, id int64) string {
	return fmt.Sprintf("%s:%d", name, id)
}

// mockSettings implements driving.SettingsService over a map.
type mockSettings struct {
	settings domain.Settings
	values   map[string]string
	setErr   error
	creds    *domain.Credentials
}

func (m *mockSettings) Get() (domain.Settings, error) { return m.settings, nil }

func (m *mockSettings) Save(settings domain.Settings) error {
	m.settings = settings
	return nil
}

func (m *mockSettings) SetCredentials(creds domain.Credentials) error {
	m.creds = &creds
	m.settings.Credentials = creds
	return nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Keys() []string { return nil }

func (m *mockSettings) IsSecret(key string) bool {
	return key == "server.password" || key == "server.client_secret"
}

// mockWatcher implements ConfigWatcher.
type mockWatcher struct {
	err error
	ran bool
}

func (m *mockWatcher) Run(ctx context.Context) error {
	m.ran = true
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return nil
}

// testEnv wires mocks into the command globals.
type testEnv struct {
	sync     *mockSync
	articles *mockArticles
	actions  *mockActions
	settings *mockSettings
	watcher  *mockWatcher
}

func setupTest() (*testEnv, func()) {
	env := &testEnv{
		sync:     &mockSync{settings: domain.DefaultSettings()},
		articles: &mockArticles{article: &domain.Article{URL: "https://example.org/post", Title: "Post"}},
		actions:  &mockActions{},
		settings: &mockSettings{settings: domain.DefaultSettings()},
		watcher:  &mockWatcher{},
	}
	SetServices(&Services{
		Settings: env.settings,
		Sync:     env.sync,
		Articles: env.articles,
		Actions:  env.actions,
		Watcher:  env.watcher,
	})

	oldBootstrap := bootstrap
	bootstrap = nil
	return env, func() {
		SetServices(nil)
		bootstrap = oldBootstrap
		listAll, saveTitle, refreshForce = false, "", false
		mcpPort, mcpHost, mcpPoll = 0, "localhost", false
		logger.SetTimestamps(false)
	}
}

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	return executeWith(context.Background(), "", args...)
}

// executeWith runs the root command with ctx and stdin.
func executeWith(ctx context.Context, stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	// Subcommands keep the context of their first run; replace it on
	// every command so each test sees its own ctx.
	setContext(ctx, rootCmd)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func setContext(ctx context.Context, cmd *cobra.Command) {
	cmd.SetContext(ctx)
	for _, sub := range cmd.Commands() {
		setContext(ctx, sub)
	}
}

var errBoom = errors.New("boom")

// contextCanceled returns a context that is already done.
func contextCanceled() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx, cancel
}
