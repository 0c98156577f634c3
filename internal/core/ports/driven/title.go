package driven

import "context"

// TitleResolver fetches a page and extracts its title.
type TitleResolver interface {
	ResolveTitle(ctx context.Context, pageURL string) (string, error)
}
