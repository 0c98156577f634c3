package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
)

// --- Clock ---

// fakeClock is a settable driven.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Notifier ---

// recordingNotifier collects events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Notify(event domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) ofKind(kind domain.EventKind) []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Event
	for _, e := range n.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

// --- Transport and authenticator ---

// mockTransport answers requests with a scripted handler.
type mockTransport struct {
	mu       sync.Mutex
	requests []driven.Request
	handler  func(n int, req driven.Request) ([]byte, error)
}

func (m *mockTransport) Send(_ context.Context, req driven.Request) ([]byte, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	n := len(m.requests)
	m.mu.Unlock()
	if m.handler == nil {
		return []byte(`{}`), nil
	}
	return m.handler(n, req)
}

func (m *mockTransport) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockTransport) request(i int) driven.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}

// mockAuthenticator hands out tokens tok1, tok2, ... unless err is set.
type mockAuthenticator struct {
	mu        sync.Mutex
	count     int
	lifetime  time.Duration
	err       error
	lastCreds domain.Credentials
}

func (m *mockAuthenticator) Authenticate(_ context.Context, creds domain.Credentials) (driven.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	m.lastCreds = creds
	if m.err != nil {
		return driven.Grant{}, m.err
	}
	lifetime := m.lifetime
	if lifetime == 0 {
		lifetime = time.Hour
	}
	return driven.Grant{AccessToken: "tok" + string(rune('0'+m.count)), ExpiresIn: lifetime}, nil
}

func (m *mockAuthenticator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// --- Executor ---

// executorCall records one Do invocation.
type executorCall struct {
	Method   string
	Endpoint string
	Body     any
}

// scriptedExecutor implements driving.Executor with a handler returning JSON.
type scriptedExecutor struct {
	mu           sync.Mutex
	calls        []executorCall
	handler      func(method, endpoint string, body any) (string, error)
	reconfigured []domain.Credentials
}

func (m *scriptedExecutor) Do(_ context.Context, method, endpoint string, body, out any) error {
	m.mu.Lock()
	m.calls = append(m.calls, executorCall{Method: method, Endpoint: endpoint, Body: body})
	handler := m.handler
	m.mu.Unlock()

	resp := "{}"
	if handler != nil {
		var err error
		resp, err = handler(method, endpoint, body)
		if err != nil {
			return err
		}
	}
	if out == nil || resp == "" {
		return nil
	}
	return json.Unmarshal([]byte(resp), out)
}

func (m *scriptedExecutor) Reconfigure(creds domain.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconfigured = append(m.reconfigured, creds)
}

func (m *scriptedExecutor) Invalidate() {}

func (m *scriptedExecutor) callsMatching(method, prefix string) []executorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []executorCall
	for _, c := range m.calls {
		if c.Method == method && strings.HasPrefix(c.Endpoint, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (m *scriptedExecutor) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- Title resolver ---

type stubTitleResolver struct {
	title string
	err   error
	urls  []string
}

func (s *stubTitleResolver) ResolveTitle(_ context.Context, pageURL string) (string, error) {
	s.urls = append(s.urls, pageURL)
	return s.title, s.err
}

// --- Desktop ---

// fakeDesktop records clipboard and browser requests.
type fakeDesktop struct {
	copied []string
	opened []string
	err    error
}

func (d *fakeDesktop) CopyText(text string) error {
	if d.err != nil {
		return d.err
	}
	d.copied = append(d.copied, text)
	return nil
}

func (d *fakeDesktop) OpenURL(url string) error {
	if d.err != nil {
		return d.err
	}
	d.opened = append(d.opened, url)
	return nil
}

// --- Article service ---

// mockArticleService implements driving.ArticleService for sync and action tests.
type mockArticleService struct {
	mu sync.Mutex

	listFn        func(since time.Time, limit int) ([]domain.Article, error)
	findDeletedFn func(hashes []string) ([]string, error)
	mutateErr     error
	saveFn        func(req domain.SaveRequest) (*domain.Article, error)

	listCalls     []time.Time
	findCalls     [][]string
	mutations     []string
	saveRequests  []domain.SaveRequest
	inList        int
	maxConcurrent int
}

func (m *mockArticleService) ListRecent(_ context.Context, since time.Time, limit int) ([]domain.Article, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, since)
	m.inList++
	if m.inList > m.maxConcurrent {
		m.maxConcurrent = m.inList
	}
	fn := m.listFn
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inList--
		m.mu.Unlock()
	}()

	if fn == nil {
		return nil, nil
	}
	return fn(since, limit)
}

func (m *mockArticleService) FindDeleted(_ context.Context, hashes []string) ([]string, error) {
	m.mu.Lock()
	m.findCalls = append(m.findCalls, append([]string(nil), hashes...))
	fn := m.findDeletedFn
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(hashes)
}

func (m *mockArticleService) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations = append(m.mutations, op)
	return m.mutateErr
}

func (m *mockArticleService) result(id int64, op string) (*domain.Article, error) {
	if err := m.record(op); err != nil {
		return nil, err
	}
	return &domain.Article{ID: id}, nil
}

func (m *mockArticleService) Get(_ context.Context, id int64) (*domain.Article, error) {
	return m.result(id, "get")
}

func (m *mockArticleService) Save(_ context.Context, req domain.SaveRequest) (*domain.Article, error) {
	m.mu.Lock()
	m.saveRequests = append(m.saveRequests, req)
	fn := m.saveFn
	m.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &domain.Article{ID: 99, URL: req.URL, Title: req.Title}, nil
}

func (m *mockArticleService) Delete(_ context.Context, _ int64) error {
	return m.record("delete")
}

func (m *mockArticleService) MarkRead(_ context.Context, id int64) (*domain.Article, error) {
	return m.result(id, "archive")
}

func (m *mockArticleService) MarkUnread(_ context.Context, id int64) (*domain.Article, error) {
	return m.result(id, "unarchive")
}

func (m *mockArticleService) Star(_ context.Context, id int64) (*domain.Article, error) {
	return m.result(id, "star")
}

func (m *mockArticleService) Unstar(_ context.Context, id int64) (*domain.Article, error) {
	return m.result(id, "unstar")
}

func (m *mockArticleService) ToggleStar(_ context.Context, id int64) (*domain.Article, error) {
	return m.result(id, "toggle-star")
}

func (m *mockArticleService) Rename(_ context.Context, id int64, title string) (*domain.Article, error) {
	return m.result(id, "rename:"+title)
}

func (m *mockArticleService) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listCalls)
}

// --- Sync engine stub ---

// stubSync implements driving.SyncEngine for action tests.
type stubSync struct {
	mu         sync.Mutex
	settings   domain.Settings
	refreshErr error
	refreshes  int
}

func (s *stubSync) Start(context.Context) error { return nil }
func (s *stubSync) Stop() error { return nil }

func (s *stubSync) Refresh(_ context.Context, force bool) (*domain.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &domain.SyncResult{Forced: force}, nil
}

func (s *stubSync) Articles() []domain.Article { return nil }
func (s *stubSync) Visible() []domain.Article { return nil }
func (s *stubSync) Cursor() time.Time { return time.Time{} }
func (s *stubSync) Settings() domain.Settings { return s.settings }
func (s *stubSync) Reconfigure(settings domain.Settings) { s.settings = settings }

func (s *stubSync) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Interface checks for the mocks.
var (
	_ driven.Clock           = (*fakeClock)(nil)
	_ driven.Notifier        = (*recordingNotifier)(nil)
	_ driven.Transport       = (*mockTransport)(nil)
	_ driven.Authenticator   = (*mockAuthenticator)(nil)
	_ driven.TitleResolver   = (*stubTitleResolver)(nil)
	_ driving.Executor       = (*scriptedExecutor)(nil)
	_ driving.ArticleService = (*mockArticleService)(nil)
	_ driving.SyncEngine     = (*stubSync)(nil)
)

// article builds a test article whose existence key derives from its URL.
func article(id int64, created time.Time) domain.Article {
	url := "https://example.org/" + string(rune('a'+id%26))
	return domain.Article{
		ID:        id,
		URL:       url,
		Title:     "Article " + string(rune('A'+id%26)),
		HashedURL: domain.HashURL(url),
		CreatedAt: created,
	}
}
