package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/app"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/services/scheduler"

	pkgmodels "github.com/ternarybob/indago/pkg/models"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	seedsFile    = flag.String("seeds", "", "Company seeds YAML file (overrides config)")
	targetName   = flag.String("name", "", "Ad-hoc company name (used with -url)")
	targetURL    = flag.String("url", "", "Ad-hoc company homepage URL, bypasses the seeds file")
	budget       = flag.Int("budget", 0, "Request budget for the session (overrides config)")
	schedule     = flag.String("schedule", "", "Cron expression for recurring runs (overrides config)")
	showStored   = flag.Bool("show", false, "Print stored discovery records and exit")
	runDirectory = flag.Bool("directory", false, "Run the batch directory crawler instead of discovery")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Indago version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Validate
	// 4. Initialize logger
	// 5. Print banner

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("indago.toml"); err == nil {
			configFiles = append(configFiles, "indago.toml")
		} else if _, err := os.Stat("deployments/local/indago.toml"); err == nil {
			// Fallback for users running from the project root
			configFiles = append(configFiles, "deployments/local/indago.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		// Use temporary logger for startup errors
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, *seedsFile, *budget, *schedule)

	if err := config.Validate(); err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	common.InstallCrashHandler("logs")
	defer common.RecoverWithCrashFile()

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("seeds_file", config.Seeds.File).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	// Cancel the run context on interrupt so the session stops between
	// requests instead of mid-flight
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	common.SafeGo(logger, "signal-handler", func() {
		<-sigChan
		logger.Info().Msg("Interrupt signal received, stopping")
		cancel()
	})

	var runErr error
	switch {
	case *showStored:
		runErr = printStored(application)
	case *runDirectory:
		runErr = application.RunDirectory(ctx)
	default:
		runErr = runDiscovery(ctx, application)
	}

	if err := application.Close(); err != nil {
		logger.Warn().Err(err).Msg("Shutdown left resources unreleased")
	}

	if runErr != nil {
		logger.Error().Err(runErr).Msg("Run failed")
		os.Exit(1)
	}
}

// runDiscovery resolves the seed input and executes the session, either once
// or on the configured schedule.
func runDiscovery(ctx context.Context, application *app.App) error {
	if *targetName != "" && *targetURL == "" {
		return fmt.Errorf("-name requires -url")
	}

	// Ad-hoc target flags beat the seeds file
	var runner scheduler.Runner
	switch {
	case *targetURL != "":
		name := *targetName
		if name == "" {
			name = *targetURL
		}
		targets := []models.SeedTarget{{Name: name, URL: *targetURL}}
		runner = func(ctx context.Context) error {
			return application.RunDiscoveryTargets(ctx, targets)
		}
	case config.Seeds.File != "":
		runner = application.RunDiscovery
	default:
		return fmt.Errorf("no targets: provide -seeds <file> or -url <homepage>")
	}

	if config.Scheduler.Schedule == "" {
		return runner(ctx)
	}

	if err := common.ValidateSchedule(config.Scheduler.Schedule); err != nil {
		return err
	}

	sched := scheduler.NewScheduler(runner, logger)
	if err := sched.Start(config.Scheduler.Schedule); err != nil {
		return err
	}

	<-ctx.Done()
	sched.Stop()
	return nil
}

// printStored dumps every stored discovery record and session summary as JSON
func printStored(application *app.App) error {
	store := application.StorageManager.DiscoveryStorage()

	results, err := store.ListResults(0)
	if err != nil {
		return fmt.Errorf("failed to read stored results: %w", err)
	}
	summaries, err := store.ListSummaries(0)
	if err != nil {
		return fmt.Errorf("failed to read stored summaries: %w", err)
	}

	out := struct {
		Results   []*pkgmodels.DiscoveryResult `json:"results"`
		Summaries []*pkgmodels.SessionSummary  `json:"summaries"`
	}{results, summaries}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render stored records: %w", err)
	}

	fmt.Println(string(data))
	return nil
}
