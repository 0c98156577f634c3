package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// maxTitleWidth truncates long titles in the article table.
const maxTitleWidth = 60

// printer writes status lines, coloured when the terminal allows it.
type printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

func newPrinter(out, err io.Writer) *printer {
	return &printer{out: out, err: err, useColors: useColors(out)}
}

// useColors enables colours only for a real terminal without NO_COLOR.
func useColors(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && f == os.Stdout
}

func (p *printer) Success(format string, args ...any) {
	if p.useColors {
		_, _ = color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

func (p *printer) Warning(format string, args ...any) {
	if p.useColors {
		_, _ = color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

func (p *printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// newTable creates a borderless, left-aligned table.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

// renderArticles prints articles as a table, newest first.
func renderArticles(w io.Writer, articles []domain.Article) error {
	rows := make([][]string, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			flags(a),
			truncate(displayTitle(a), maxTitleWidth),
			a.Domain,
			formatAge(a.CreatedAt, time.Now()),
		})
	}

	table := newTable(w)
	table.Header([]string{"ID", "Flags", "Title", "Domain", "Added"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// renderKeyValues prints two-column rows.
func renderKeyValues(w io.Writer, header []string, rows [][]string) error {
	table := newTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func flags(a *domain.Article) string {
	f := []byte("--")
	if a.IsArchived {
		f[0] = 'A'
	}
	if a.IsStarred {
		f[1] = '*'
	}
	return string(f)
}

func displayTitle(a *domain.Article) string {
	if a.Title != "" {
		return a.Title
	}
	return a.URL
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// formatAge renders how long ago t was, in the largest whole unit.
func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

// maskSecret hides all but the edges of a secret value.
func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:2] + "..." + value[len(value)-2:]
}
