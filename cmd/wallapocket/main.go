// Command wallapocket keeps a local view of recent wallabag articles in step
// with the server.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/wallapocket/internal/adapters/driven/config/file"
	"github.com/custodia-labs/wallapocket/internal/adapters/driven/desktop"
	"github.com/custodia-labs/wallapocket/internal/adapters/driven/notify"
	"github.com/custodia-labs/wallapocket/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wallapocket/internal/adapters/driven/wallabag"
	"github.com/custodia-labs/wallapocket/internal/adapters/driven/webpage"
	"github.com/custodia-labs/wallapocket/internal/adapters/driving/cli"
	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/services"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

func main() {
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the core services.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	settingsService := services.NewSettingsService(store)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	logger.Redact(settings.Credentials.Password, settings.Credentials.ClientSecret)

	client := wallabag.NewHTTPClient(settings.HTTP)
	executor := services.NewExecutor(
		wallabag.NewHTTPTransport(client),
		wallabag.NewPasswordAuthenticator(client),
		memory.NewTokenStore(),
		nil,
		settings.Credentials,
	)
	// Scraped sites get their own client so their throttling never
	// holds back API calls.
	scraper := wallabag.NewHTTPTransport(wallabag.NewHTTPClient(settings.HTTP))
	articleService := services.NewArticleService(executor, webpage.NewTitleResolver(scraper))

	console := notify.NewConsole()
	if !opts.AllEvents {
		console = console.Only(domain.EventInfo, domain.EventOperationFailed)
	}

	engine := services.NewSyncEngine(articleService, executor, console, nil, settings)
	actionService := services.NewActionService(articleService, engine, console, desktop.NewLauncher(), nil)

	watcher := file.NewWatcher(store, func() {
		updated, err := settingsService.Get()
		if err != nil {
			logger.Warn("Ignoring config change: %v", err)
			return
		}
		logger.Redact(updated.Credentials.Password, updated.Credentials.ClientSecret)
		logger.Info("Config reloaded")
		engine.Reconfigure(updated)
	})

	return &cli.Services{
		Settings: settingsService,
		Sync:     engine,
		Articles: articleService,
		Actions:  actionService,
		Watcher:  watcher,
	}, nil
}
