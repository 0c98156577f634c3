// Package webpage resolves page titles for articles the server could not
// fetch itself.
package webpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

// Ensure TitleResolver implements the interface.
var _ driven.TitleResolver = (*TitleResolver)(nil)

// ErrNoTitle indicates the page has no usable <title>.
var ErrNoTitle = errors.New("page has no title")

// userAgents are desktop browser identities; sites that block unknown
// clients usually accept one of them.
var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

// TitleResolver downloads a page and extracts its <title>.
type TitleResolver struct {
	transport driven.Transport
	pickAgent func() string
}

// NewTitleResolver creates a resolver that fetches pages through transport.
func NewTitleResolver(transport driven.Transport) *TitleResolver {
	return &TitleResolver{
		transport: transport,
		pickAgent: func() string { return userAgents[rand.IntN(len(userAgents))] },
	}
}

// ResolveTitle returns the trimmed text of the page's first <title>.
func (r *TitleResolver) ResolveTitle(ctx context.Context, pageURL string) (string, error) {
	header := http.Header{}
	header.Set("User-Agent", r.pickAgent())
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	header.Set("Accept-Language", "en-US,en;q=0.5")
	header.Set("Upgrade-Insecure-Requests", "1")

	body, err := r.transport.Send(ctx, driven.Request{
		Method: http.MethodGet,
		URL:    pageURL,
		Header: header,
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	return ExtractTitle(body)
}

// ExtractTitle parses html and returns its first <title>. Entities are
// decoded and non-breaking spaces become plain spaces.
func ExtractTitle(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	title := doc.Find("title").First().Text()
	title = strings.ReplaceAll(title, "\u00a0", " ")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "", ErrNoTitle
	}
	return title, nil
}
