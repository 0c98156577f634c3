package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent articles",
	Long: `Loads the most recent articles from the server and prints them newest first.
The number shown follows display.max_articles unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var saveCmd = &cobra.Command{
	Use:   "save [url]",
	Short: "Save a URL as a new article",
	Long: `Saves a URL. When the server cannot fetch the page and save.resave_on_failure
is enabled, the entry is deleted and saved again with the page title resolved locally.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

var archiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Mark an article as read",
	Args:  cobra.ExactArgs(1),
	RunE: withButton("display.show_archive_button", func(b domain.ButtonSettings) bool { return b.Archive },
		articleAction("Archived", func(cmd *cobra.Command, id int64) error { return actionService.Archive(cmd.Context(), id) })),
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive [id]",
	Short: "Move an article back to the unread list",
	Args:  cobra.ExactArgs(1),
	RunE: withButton("display.show_archive_button", func(b domain.ButtonSettings) bool { return b.Archive },
		articleAction("Unarchived", func(cmd *cobra.Command, id int64) error { return actionService.Unarchive(cmd.Context(), id) })),
}

var starCmd = &cobra.Command{
	Use:   "star [id]",
	Short: "Star an article",
	Args:  cobra.ExactArgs(1),
	RunE: withButton("display.show_star_button", func(b domain.ButtonSettings) bool { return b.Star },
		articleAction("Starred", func(cmd *cobra.Command, id int64) error { return actionService.Star(cmd.Context(), id) })),
}

var unstarCmd = &cobra.Command{
	Use:   "unstar [id]",
	Short: "Remove the star from an article",
	Args:  cobra.ExactArgs(1),
	RunE: withButton("display.show_star_button", func(b domain.ButtonSettings) bool { return b.Star },
		articleAction("Unstarred", func(cmd *cobra.Command, id int64) error { return actionService.Unstar(cmd.Context(), id) })),
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an article from the server",
	Args:  cobra.ExactArgs(1),
	RunE: withButton("display.show_delete_button", func(b domain.ButtonSettings) bool { return b.Delete },
		articleAction("Deleted", func(cmd *cobra.Command, id int64) error { return actionService.Delete(cmd.Context(), id) })),
}

var renameCmd = &cobra.Command{
	Use:   "rename [id] [title...]",
	Short: "Change an article's title",
	Args:  cobra.MinimumNArgs(2),
	RunE: withButton("display.show_edit_title_button", func(b domain.ButtonSettings) bool { return b.EditTitle },
		runRename),
}

var copyCmd = &cobra.Command{
	Use:   "copy [id]",
	Short: "Copy an article URL to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: withButton("display.show_copy_button", func(b domain.ButtonSettings) bool { return b.Copy },
		runCopy),
}

var openCmd = &cobra.Command{
	Use:   "open [id]",
	Short: "Open an article in the default browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var (
	listAll   bool
	saveTitle string
)

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "show every loaded article")
	saveCmd.Flags().StringVarP(&saveTitle, "title", "t", "", "title to store with the article")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(unstarCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(openCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if syncEngine == nil {
		return errNotConfigured("sync")
	}

	if _, err := syncEngine.Refresh(cmd.Context(), true); err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}

	articles := syncEngine.Visible()
	if listAll {
		articles = syncEngine.Articles()
	}
	if len(articles) == 0 {
		cmd.Println("No articles found.")
		return nil
	}
	return renderArticles(cmd.OutOrStdout(), articles)
}

func runSave(cmd *cobra.Command, args []string) error {
	if actionService == nil {
		return errNotConfigured("action")
	}

	article, err := actionService.QuickSave(cmd.Context(), args[0], saveTitle)
	if err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}

	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	p.Success("Saved article %d: %s", article.ID, displayTitle(article))
	return nil
}

// errActionDisabled is returned for an action whose button is turned off.
var errActionDisabled = errors.New("action disabled")

// withButton refuses to run when the display button for the action is off.
func withButton(key string, enabled func(domain.ButtonSettings) bool, run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if syncEngine != nil && !enabled(syncEngine.Settings().Buttons) {
			return fmt.Errorf("%w: %s (enable with: wallapocket settings set %s true)", errActionDisabled, cmd.Name(), key)
		}
		return run(cmd, args)
	}
}

// articleAction builds a RunE for a command taking a single article ID.
func articleAction(done string, run func(cmd *cobra.Command, id int64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if actionService == nil {
			return errNotConfigured("action")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := run(cmd, id); err != nil {
			return err
		}
		newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).Success("%s article %d", done, id)
		return nil
	}
}

func runRename(cmd *cobra.Command, args []string) error {
	if actionService == nil {
		return errNotConfigured("action")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	title := strings.Join(args[1:], " ")
	if err := actionService.Rename(cmd.Context(), id, title); err != nil {
		return err
	}
	newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).Success("Renamed article %d to %q", id, strings.TrimSpace(title))
	return nil
}

func runCopy(cmd *cobra.Command, args []string) error {
	article, err := fetchArticle(cmd, args[0])
	if err != nil {
		return err
	}
	return actionService.CopyURL(cmd.Context(), article)
}

func runOpen(cmd *cobra.Command, args []string) error {
	article, err := fetchArticle(cmd, args[0])
	if err != nil {
		return err
	}
	if err := actionService.Open(cmd.Context(), article); err != nil {
		return fmt.Errorf("failed to open %s: %w", article.URL, err)
	}
	return nil
}

// fetchArticle loads one article by the ID argument.
func fetchArticle(cmd *cobra.Command, arg string) (*domain.Article, error) {
	if articleService == nil || actionService == nil {
		return nil, errNotConfigured("article")
	}
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	article, err := articleService.Get(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no article with id %d: %w", id, err)
	}
	return article, err
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an article id", domain.ErrInvalidInput, arg)
	}
	return id, nil
}
