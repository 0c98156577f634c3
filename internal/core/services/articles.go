package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

// Ensure ArticleService implements the interface.
var _ driving.ArticleService = (*ArticleService)(nil)

const (
	// ExistsBatchSize is the number of hashed URLs sent per existence probe.
	ExistsBatchSize = 50

	// existsConcurrency bounds parallel existence probes.
	existsConcurrency = 2
)

// ArticleService implements the article operations on top of an Executor.
type ArticleService struct {
	executor driving.Executor
	titles   driven.TitleResolver
}

// NewArticleService creates an article service. titles may be nil, in which
// case the resave workaround uses the URL as title.
func NewArticleService(executor driving.Executor, titles driven.TitleResolver) *ArticleService {
	return &ArticleService{
		executor: executor,
		titles:   titles,
	}
}

// entriesResponse is the paginated list envelope.
type entriesResponse struct {
	Embedded struct {
		Items []domain.Article `json:"items"`
	} `json:"_embedded"`
}

// saveBody is the POST /entries.json payload.
type saveBody struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Tags    string `json:"tags,omitempty"`
}

// ListRecent returns articles created after since, newest first.
func (s *ArticleService) ListRecent(ctx context.Context, since time.Time, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = domain.DefaultFetchLimit
	}

	q := url.Values{}
	q.Set("perPage", strconv.Itoa(limit))
	q.Set("order", "desc")
	q.Set("sort", "created")
	if !since.IsZero() {
		q.Set("since", strconv.FormatInt(since.Unix(), 10))
	}

	var resp entriesResponse
	if err := s.executor.Do(ctx, http.MethodGet, "/entries.json?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}

	// The server filters "since" on update time, so older entries that were
	// edited come back too.
	articles := make([]domain.Article, 0, len(resp.Embedded.Items))
	for _, a := range resp.Embedded.Items {
		if since.IsZero() || a.CreatedAt.After(since) {
			articles = append(articles, a)
		}
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
	if len(articles) > limit {
		articles = articles[:limit]
	}

	return articles, nil
}

// Get fetches a single article.
func (s *ArticleService) Get(ctx context.Context, id int64) (*domain.Article, error) {
	var article domain.Article
	if err := s.executor.Do(ctx, http.MethodGet, entryPath(id), nil, &article); err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return &article, nil
}

// Save submits a new article.
func (s *ArticleService) Save(ctx context.Context, req domain.SaveRequest) (*domain.Article, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	body := saveBody{
		URL:     req.URL,
		Title:   req.Title,
		Content: req.Content,
	}
	if len(req.Tags) > 0 {
		body.Tags = strings.Join(req.Tags, ",")
	}

	var entry domain.Article
	if err := s.executor.Do(ctx, http.MethodPost, "/entries.json", body, &entry); err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}

	if !req.AllowResave || entry.HTTPStatus.Succeeded() {
		return &entry, nil
	}
	return s.resave(ctx, &entry, req)
}

// resave deletes an entry the server failed to fetch and submits it again
// with a locally resolved title as both title and content. The second save
// never resaves.
func (s *ArticleService) resave(ctx context.Context, broken *domain.Article, req domain.SaveRequest) (*domain.Article, error) {
	logger.Info("Server could not fetch %s (status %q), saving it again", req.URL, broken.HTTPStatus)

	if err := s.Delete(ctx, broken.ID); err != nil {
		return nil, fmt.Errorf("resave: %w", err)
	}

	origin := broken.SourceURL()
	if origin == "" {
		origin = req.URL
	}
	title := s.pageTitle(ctx, origin)

	return s.Save(ctx, domain.SaveRequest{
		URL:         origin,
		Title:       title,
		Content:     title,
		Tags:        req.Tags,
		AllowResave: false,
	})
}

// pageTitle resolves the page title, falling back to the URL itself.
func (s *ArticleService) pageTitle(ctx context.Context, pageURL string) string {
	if s.titles == nil {
		return pageURL
	}
	title, err := s.titles.ResolveTitle(ctx, pageURL)
	if err != nil {
		logger.Debug("No title for %s: %v", pageURL, err)
		return pageURL
	}
	if title = strings.TrimSpace(title); title == "" {
		return pageURL
	}
	return title
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	if err := s.executor.Do(ctx, http.MethodDelete, entryPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	return nil
}

// MarkRead archives an article.
func (s *ArticleService) MarkRead(ctx context.Context, id int64) (*domain.Article, error) {
	return s.patch(ctx, id, map[string]any{"archive": 1})
}

// MarkUnread moves an article back to the unread list.
func (s *ArticleService) MarkUnread(ctx context.Context, id int64) (*domain.Article, error) {
	return s.patch(ctx, id, map[string]any{"archive": 0})
}

// Star marks an article as favourite.
func (s *ArticleService) Star(ctx context.Context, id int64) (*domain.Article, error) {
	return s.patch(ctx, id, map[string]any{"starred": 1})
}

// Unstar removes the favourite mark.
func (s *ArticleService) Unstar(ctx context.Context, id int64) (*domain.Article, error) {
	return s.patch(ctx, id, map[string]any{"starred": 0})
}

// ToggleStar flips the starred flag based on the server's current state.
func (s *ArticleService) ToggleStar(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.IsStarred {
		return s.Unstar(ctx, id)
	}
	return s.Star(ctx, id)
}

// Rename changes an article's title.
func (s *ArticleService) Rename(ctx context.Context, id int64, title string) (*domain.Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidInput)
	}
	return s.patch(ctx, id, map[string]any{"title": title})
}

func (s *ArticleService) patch(ctx context.Context, id int64, fields map[string]any) (*domain.Article, error) {
	var article domain.Article
	if err := s.executor.Do(ctx, http.MethodPatch, entryPath(id), fields, &article); err != nil {
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	return &article, nil
}

// FindDeleted asks the server which of hashedURLs no longer exist.
// The result keeps the input order.
func (s *ArticleService) FindDeleted(ctx context.Context, hashedURLs []string) ([]string, error) {
	hashes := uniqueNonEmpty(hashedURLs)
	if len(hashes) == 0 {
		return nil, nil
	}

	var batches [][]string
	for start := 0; start < len(hashes); start += ExistsBatchSize {
		end := min(start+ExistsBatchSize, len(hashes))
		batches = append(batches, hashes[start:end])
	}

	results := make([]map[string]json.RawMessage, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(existsConcurrency)
	for i, batch := range batches {
		g.Go(func() error {
			q := url.Values{"hashed_urls[]": batch}
			var resp map[string]json.RawMessage
			if err := s.executor.Do(gctx, http.MethodGet, "/entries/exists?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("find deleted articles: %w", err)
	}

	var deleted []string
	for i, batch := range batches {
		for _, hash := range batch {
			raw, ok := results[i][hash]
			if ok && !existsValue(raw) {
				deleted = append(deleted, hash)
			}
		}
	}
	return deleted, nil
}

// existsValue interprets one value of the exists mapping: a boolean, or the
// entry id when the server returns ids.
func existsValue(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "false", "null", "0", "":
		return false
	default:
		return true
	}
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func entryPath(id int64) string {
	return "/entries/" + strconv.FormatInt(id, 10) + ".json"
}
