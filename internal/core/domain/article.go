package domain

import (
	"crypto/sha1" //nolint:gosec // matches the server's hashed_url scheme, not used for security
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Article is a saved web page (an "entry" on the server).
// The server owns it; the client holds a read-mostly projection.
type Article struct {
	// ID is the server-assigned identifier.
	ID int64 `json:"id"`

	// URL is the canonical URL after the server resolved redirects.
	URL string `json:"url"`
	// GivenURL is the URL exactly as it was submitted.
	GivenURL string `json:"given_url,omitempty"`
	// OriginURL is the optional "original" URL recorded by the server.
	OriginURL string `json:"origin_url,omitempty"`

	Title  string `json:"title"`
	Domain string `json:"domain_name,omitempty"`

	IsArchived bool `json:"is_archived"`
	IsStarred  bool `json:"is_starred"`

	// HashedURL is the server's SHA-1 of URL, used for existence probing.
	HashedURL      string `json:"hashed_url,omitempty"`
	HashedGivenURL string `json:"hashed_given_url,omitempty"`

	Tags []Tag `json:"tags,omitempty"`

	// HTTPStatus is the status the server got when fetching the page content.
	// It is reported per entry, separately from the API response status.
	HTTPStatus EmbeddedStatus `json:"http_status,omitempty"`

	PreviewPicture string `json:"preview_picture,omitempty"`
	ReadingTime    int    `json:"reading_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a label attached to an article.
type Tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug,omitempty"`
}

// ExistenceKey returns the hashed URL used to ask the server whether the
// article still exists. Falls back to hashing URL locally.
func (a *Article) ExistenceKey() string {
	if a.HashedURL != "" {
		return a.HashedURL
	}
	if a.URL == "" {
		return ""
	}
	return HashURL(a.URL)
}

// SourceURL returns the URL the page should be fetched from when it has to be
// saved again: origin_url, then given_url, then url.
func (a *Article) SourceURL() string {
	switch {
	case a.OriginURL != "":
		return a.OriginURL
	case a.GivenURL != "":
		return a.GivenURL
	default:
		return a.URL
	}
}

// HashURL returns the hex SHA-1 of u, the server's hashed_url format.
func HashURL(u string) string {
	sum := sha1.Sum([]byte(u)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// UnmarshalJSON accepts the server's wire format: 0/1 flags and
// timestamps without a colon in the zone offset.
func (a *Article) UnmarshalJSON(data []byte) error {
	type alias Article
	aux := struct {
		*alias
		IsArchived flexBool `json:"is_archived"`
		IsStarred  flexBool `json:"is_starred"`
		CreatedAt  string   `json:"created_at"`
		UpdatedAt  string   `json:"updated_at"`
	}{alias: (*alias)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	a.IsArchived = bool(aux.IsArchived)
	a.IsStarred = bool(aux.IsStarred)

	var err error
	if a.CreatedAt, err = parseTimestamp(aux.CreatedAt); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTimestamp(aux.UpdatedAt); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	return nil
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", ErrInvalidInput, s)
}

// flexBool decodes true/false, 0/1 and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	switch s {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("%w: not a boolean: %s", ErrInvalidInput, data)
	}
	return nil
}

// EmbeddedStatus is the per-entry http_status the server reports after
// fetching the page. It arrives as a string, a number or null.
type EmbeddedStatus string

// UnmarshalJSON keeps the raw value of strings and numbers; null is empty.
func (s *EmbeddedStatus) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = EmbeddedStatus(str)
		return nil
	}
	*s = EmbeddedStatus(raw)
	return nil
}

// Succeeded reports whether the server fetched the page successfully.
// An absent status counts as 200; an unparsable one counts as a failure.
func (s EmbeddedStatus) Succeeded() bool {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return true
	}
	code, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	return code >= 200 && code < 300
}

// SaveRequest describes a new article to submit.
type SaveRequest struct {
	URL     string
	Title   string
	Content string
	Tags    []string

	// AllowResave enables the delete-and-resave workaround when the server
	// could not fetch the page. The workaround's own save always clears it.
	AllowResave bool
}
