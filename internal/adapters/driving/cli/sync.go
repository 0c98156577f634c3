package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/wallapocket/internal/logger"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Synchronise articles with the server",
	Long: `Runs one synchronisation pass. Use --force to reload the article list from
scratch instead of fetching only what was added since the last pass.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the server and report new articles",
	Long: `Keeps the article list in step with the server, polling every
sync.refresh_interval minutes, and prints new articles and failures as they
happen. Edits to the config file are applied without restarting.
Stop with Ctrl+C.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationAllEvents: "true"},
	RunE:        runWatch,
}

var refreshForce bool

func init() {
	refreshCmd.Flags().BoolVarP(&refreshForce, "force", "f", false, "reload every article")

	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(watchCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	if syncEngine == nil {
		return errNotConfigured("sync")
	}

	result, err := syncEngine.Refresh(cmd.Context(), refreshForce)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	p.Success("%d new, %d removed, %d articles", len(result.Added), len(result.Removed), len(syncEngine.Articles()))
	return nil
}

// runWatch runs the poll loop and the config watcher until interrupted.
func runWatch(cmd *cobra.Command, _ []string) error {
	if syncEngine == nil {
		return errNotConfigured("sync")
	}

	logger.SetTimestamps(true)
	cmd.Println("Watching for new articles. Press Ctrl+C to stop.")

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return syncEngine.Start(ctx)
	})
	if configWatcher != nil {
		g.Go(func() error {
			return configWatcher.Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		return syncEngine.Stop()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
