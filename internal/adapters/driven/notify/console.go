// Package notify delivers core events to a terminal.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

// Ensure Console implements the interface.
var _ driven.Notifier = (*Console)(nil)

// Console prints events as single status lines.
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	err       io.Writer
	useColors bool

	// only restricts output to these kinds when non-empty.
	only map[domain.EventKind]bool
}

// NewConsole creates a console notifier on stdout and stderr. Colours follow
// the terminal and NO_COLOR.
func NewConsole() *Console {
	return &Console{
		out:       os.Stdout,
		err:       os.Stderr,
		useColors: !color.NoColor,
	}
}

// NewConsoleWithWriters creates a notifier writing to out and err.
func NewConsoleWithWriters(out, err io.Writer, useColors bool) *Console {
	return &Console{out: out, err: err, useColors: useColors}
}

// Only restricts the console to the given event kinds and returns it.
func (c *Console) Only(kinds ...domain.EventKind) *Console {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.only = make(map[domain.EventKind]bool, len(kinds))
	for _, k := range kinds {
		c.only[k] = true
	}
	return c
}

// Notify prints the event.
func (c *Console) Notify(event domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.only) > 0 && !c.only[event.Kind] {
		return
	}

	switch event.Kind {
	case domain.EventNewArticle:
		if event.Article == nil {
			return
		}
		c.line(c.out, color.FgGreen, "+ ", "[NEW] ", "New article: %s", displayTitle(event.Article))
	case domain.EventArticlesChanged:
		c.line(c.out, color.FgCyan, "", "", "%d articles", len(event.Articles))
	case domain.EventInfo:
		c.line(c.out, color.FgCyan, "i ", "[INFO] ", "%s", event.Message)
	case domain.EventOperationFailed:
		msg := event.Message
		if msg == "" {
			msg = event.Failure.Message()
		}
		if event.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, event.Err)
		}
		c.line(c.err, color.FgRed, "✗ ", "[ERROR] ", "%s", msg)
	}
}

func (c *Console) line(w io.Writer, attr color.Attribute, symbol, tag, format string, args ...any) {
	if c.useColors {
		_, _ = color.New(attr).Fprintf(w, symbol+format+"\n", args...)
		return
	}
	fmt.Fprintf(w, tag+format+"\n", args...)
}

func displayTitle(a *domain.Article) string {
	if a.Title != "" {
		return a.Title
	}
	return a.URL
}
