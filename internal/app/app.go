package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/services/classifier"
	"github.com/ternarybob/indago/internal/services/detector"
	"github.com/ternarybob/indago/internal/services/directory"
	"github.com/ternarybob/indago/internal/services/discovery"
	"github.com/ternarybob/indago/internal/services/seeds"
	"github.com/ternarybob/indago/internal/storage"

	browsersvc "github.com/ternarybob/indago/internal/services/browser"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Page automation (shared by discovery and tool detection)
	Browser     *browsersvc.Service
	browserOnce sync.Once
	browserErr  error

	// Discovery pipeline
	Classifier       *classifier.Classifier
	Detector         interfaces.ToolDetector
	DiscoveryService *discovery.Service

	// Batch directory crawler
	DirectoryService *directory.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Int("request_budget", cfg.Discovery.RequestBudget).
		Bool("detect_tools", cfg.Discovery.DetectTools).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (Badger)
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order.
// The browser pool itself is started lazily on the first discovery run so
// that directory-only invocations never launch Chrome.
func (a *App) initServices() error {
	rules := classifier.DefaultRuleSet().Extend(classifier.RuleSet{
		InternalToolIndicators: a.Config.Classifier.ExtraInternalToolIndicators,
		ClickableIndicators:    a.Config.Classifier.ExtraClickableIndicators,
		ExcludedDomains:        a.Config.Classifier.ExtraExcludedDomains,
	})
	a.Classifier = classifier.New(rules, a.Logger)

	a.Browser = browsersvc.NewService(
		a.Config.Browser,
		rules.ClickableIndicators,
		a.Config.Discovery.MaxCandidatesPerPage,
		a.Logger,
	)

	a.Detector = detector.NewService(a.Browser, detector.DefaultSignatures(), a.Logger)

	a.DiscoveryService = discovery.NewService(
		a.Config,
		a.Browser,
		a.Classifier,
		a.Detector,
		a.StorageManager.DiscoveryStorage(),
		a.Logger,
	)

	a.DirectoryService = directory.NewService(a.Config.Directory, a.Logger)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// startBrowser brings the pool up once; later calls return the first error.
func (a *App) startBrowser() error {
	a.browserOnce.Do(func() {
		a.browserErr = a.Browser.Init()
	})
	return a.browserErr
}

// RunDiscovery executes one discovery session over the configured seeds
// file. The file is re-read on every call so scheduled runs pick up edits.
func (a *App) RunDiscovery(ctx context.Context) error {
	targets, err := seeds.Load(a.Config.Seeds.File, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load seeds: %w", err)
	}
	return a.RunDiscoveryTargets(ctx, targets)
}

// RunDiscoveryTargets executes one discovery session over explicit targets
func (a *App) RunDiscoveryTargets(ctx context.Context, targets []models.SeedTarget) error {
	if err := a.startBrowser(); err != nil {
		return fmt.Errorf("failed to start browser pool: %w", err)
	}

	_, err := a.DiscoveryService.Run(ctx, targets)
	return err
}

// RunDirectory crawls the configured company listing and writes the
// configured exports.
func (a *App) RunDirectory(ctx context.Context) error {
	companies, err := a.DirectoryService.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("directory crawl failed: %w", err)
	}

	a.Logger.Info().Int("companies", len(companies)).Msg("Directory crawl complete")

	if path := a.Config.Directory.OutputXLSX; path != "" {
		if err := directory.ExportXLSX(companies, path); err != nil {
			return fmt.Errorf("failed to write spreadsheet export: %w", err)
		}
		a.Logger.Info().Str("path", path).Msg("Spreadsheet export written")
	}

	if path := a.Config.Directory.OutputSeeds; path != "" {
		if err := directory.ExportSeeds(companies, path); err != nil {
			return fmt.Errorf("failed to write seeds export: %w", err)
		}
		a.Logger.Info().Str("path", path).Msg("Seeds export written")
	}

	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Browser != nil {
		if err := a.Browser.Shutdown(context.Background()); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to shut down browser pool")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
