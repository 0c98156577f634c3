// Package cli is the command-line driving adapter. Commands drive the core
// services registered with SetServices or built lazily by a Bootstrap.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Annotations understood by the root command.
const (
	// annotationNoServices marks commands that run without core services.
	annotationNoServices = "wallapocket/no-services"
	// annotationAllEvents marks long-running commands that print every event.
	annotationAllEvents = "wallapocket/all-events"
)

// ConfigWatcher reloads settings when the config file changes.
type ConfigWatcher interface {
	Run(ctx context.Context) error
}

// Services bundles the core services the commands drive.
type Services struct {
	Settings driving.SettingsService
	Sync     driving.SyncEngine
	Articles driving.ArticleService
	Actions  driving.ActionService
	Watcher  ConfigWatcher
}

// Options are passed to a Bootstrap.
type Options struct {
	// ConfigDir overrides the configuration directory. Empty means default.
	ConfigDir string
	// AllEvents asks for a notifier that prints every event, not only
	// failures and info messages.
	AllEvents bool
}

// Bootstrap builds the core services for a command invocation.
type Bootstrap func(opts Options) (*Services, error)

var (
	bootstrap Bootstrap

	settingsService driving.SettingsService
	syncEngine      driving.SyncEngine
	articleService  driving.ArticleService
	actionService   driving.ActionService
	configWatcher   ConfigWatcher

	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "wallapocket",
	Short: "Read-later client for wallabag servers",
	Long: `wallapocket keeps a local view of your most recent wallabag articles in
step with the server and lets you save, archive, star, rename and delete them.

Configure the server once with "wallapocket settings login", then use
"wallapocket list" or keep "wallapocket watch" running in a terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default $WALLAPOCKET_CONFIG_DIR or ~/.wallapocket)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices registers the core services directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	syncEngine = s.Sync
	articleService = s.Articles
	actionService = s.Actions
	configWatcher = s.Watcher
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// prepare applies global flags and builds services when a bootstrap is set.
func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] != "" || bootstrap == nil || syncEngine != nil {
		return nil
	}

	services, err := bootstrap(Options{
		ConfigDir: configDir,
		AllEvents: cmd.Annotations[annotationAllEvents] != "",
	})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

// errNotConfigured is returned when a command runs without its service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
