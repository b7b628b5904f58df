package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production" - controls test URL validation
	Seeds       SeedsConfig      `toml:"seeds"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Browser     BrowserConfig    `toml:"browser"`
	Discovery   DiscoveryConfig  `toml:"discovery"`
	Classifier  ClassifierConfig `toml:"classifier"`
	Directory   DirectoryConfig  `toml:"directory"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
}

// SeedsConfig locates the company-directory input file
type SeedsConfig struct {
	File string `toml:"file"` // YAML file with the companies to investigate
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// BrowserConfig tunes the page automation layer
type BrowserConfig struct {
	PoolSize          int           `toml:"pool_size" validate:"min=1,max=16"`         // Warm browser contexts kept ready
	Headless          bool          `toml:"headless"`                                  // Run browsers without a window
	UserAgent         string        `toml:"user_agent"`                                // User agent for all navigation
	NavigationTimeout time.Duration `toml:"navigation_timeout" validate:"required"`    // Per-attempt page load timeout
	NavigationRetries int           `toml:"navigation_retries" validate:"min=1,max=9"` // Bounded retry attempts per load
	ActivationTimeout time.Duration `toml:"activation_timeout"`                        // Per-candidate click timeout
	NewContextTimeout time.Duration `toml:"new_context_timeout"`                       // Race window for a new tab to appear
	IdleTimeout       time.Duration `toml:"idle_timeout"`                              // Network-idle wait bound
	SettleDelay       time.Duration `toml:"settle_delay"`                              // Fixed wait after idle, absorbs late redirects
	RequestsPerSecond float64       `toml:"requests_per_second" validate:"gt=0"`       // Per-domain politeness rate
	RequestBurst      int           `toml:"request_burst" validate:"min=1"`            // Per-domain burst allowance
}

// DiscoveryConfig tunes the discovery engine itself
type DiscoveryConfig struct {
	RequestBudget        int  `toml:"request_budget" validate:"min=1"`          // Max requests processed across all seeds in a session
	MaxCandidatesPerPage int  `toml:"max_candidates_per_page" validate:"min=1"` // Cap on clickable candidates probed per page
	DetectTools          bool `toml:"detect_tools"`                             // Run monitoring SDK detection on seed pages
	IncludeSnapshot      bool `toml:"include_snapshot"`                         // Store a markdown snapshot of the seed page
	SnapshotMaxRunes     int  `toml:"snapshot_max_runes" validate:"min=1"`      // Truncation bound for snapshots
}

// ClassifierConfig extends the built-in heuristic lists
type ClassifierConfig struct {
	ExtraInternalToolIndicators []string `toml:"extra_internal_tool_indicators"`
	ExtraClickableIndicators    []string `toml:"extra_clickable_indicators"`
	ExtraExcludedDomains        []string `toml:"extra_excluded_domains"`
}

// DirectoryConfig drives the batch company-listing crawler
type DirectoryConfig struct {
	StartURL         string        `toml:"start_url"` // Listing URL pattern; %d is replaced with the page number
	MaxPages         int           `toml:"max_pages" validate:"min=1"`
	Delay            time.Duration `toml:"delay"` // Wait between listing page fetches
	RowSelector      string        `toml:"row_selector"`
	NameSelector     string        `toml:"name_selector"`
	WebsiteSelector  string        `toml:"website_selector"`
	LocationSelector string        `toml:"location_selector"`
	CategorySelector string        `toml:"category_selector"`
	OutputXLSX       string        `toml:"output_xlsx"`  // Spreadsheet export path, empty disables
	OutputSeeds      string        `toml:"output_seeds"` // Seeds YAML export path, empty disables
}

// SchedulerConfig controls recurring discovery runs
type SchedulerConfig struct {
	Schedule string `toml:"schedule"` // Cron expression; empty means run once and exit
}

// NewDefaultConfig returns the built-in defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Seeds:       SeedsConfig{},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/indago.db",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Browser: BrowserConfig{
			PoolSize:          2,
			Headless:          true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavigationTimeout: 30 * time.Second,
			NavigationRetries: 3,
			ActivationTimeout: 5 * time.Second,
			NewContextTimeout: 4 * time.Second,
			IdleTimeout:       8 * time.Second,
			SettleDelay:       2 * time.Second,
			RequestsPerSecond: 1,
			RequestBurst:      2,
		},
		Discovery: DiscoveryConfig{
			RequestBudget:        50,
			MaxCandidatesPerPage: 25,
			DetectTools:          true,
			IncludeSnapshot:      false,
			SnapshotMaxRunes:     20000,
		},
		Classifier: ClassifierConfig{},
		Directory: DirectoryConfig{
			MaxPages: 5,
			Delay:    1 * time.Second,
		},
		Scheduler: SchedulerConfig{},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: INDAGO_ENV, fallback: GO_ENV)
	if env := os.Getenv("INDAGO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Seeds configuration
	if file := os.Getenv("INDAGO_SEEDS_FILE"); file != "" {
		config.Seeds.File = file
	}

	// Storage configuration
	if badgerPath := os.Getenv("INDAGO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if reset := os.Getenv("INDAGO_BADGER_RESET_ON_STARTUP"); reset != "" {
		if r, err := strconv.ParseBool(reset); err == nil {
			config.Storage.Badger.ResetOnStartup = r
		}
	}

	// Logging configuration
	if level := os.Getenv("INDAGO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("INDAGO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Browser configuration
	if poolSize := os.Getenv("INDAGO_BROWSER_POOL_SIZE"); poolSize != "" {
		if ps, err := strconv.Atoi(poolSize); err == nil {
			config.Browser.PoolSize = ps
		}
	}
	if headless := os.Getenv("INDAGO_BROWSER_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = h
		}
	}
	if userAgent := os.Getenv("INDAGO_BROWSER_USER_AGENT"); userAgent != "" {
		config.Browser.UserAgent = userAgent
	}
	if navigationTimeout := os.Getenv("INDAGO_BROWSER_NAVIGATION_TIMEOUT"); navigationTimeout != "" {
		if nt, err := time.ParseDuration(navigationTimeout); err == nil {
			config.Browser.NavigationTimeout = nt
		}
	}
	if retries := os.Getenv("INDAGO_BROWSER_NAVIGATION_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.Browser.NavigationRetries = r
		}
	}
	if settleDelay := os.Getenv("INDAGO_BROWSER_SETTLE_DELAY"); settleDelay != "" {
		if sd, err := time.ParseDuration(settleDelay); err == nil {
			config.Browser.SettleDelay = sd
		}
	}
	if rps := os.Getenv("INDAGO_BROWSER_REQUESTS_PER_SECOND"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			config.Browser.RequestsPerSecond = r
		}
	}

	// Discovery configuration
	if budget := os.Getenv("INDAGO_DISCOVERY_REQUEST_BUDGET"); budget != "" {
		if b, err := strconv.Atoi(budget); err == nil {
			config.Discovery.RequestBudget = b
		}
	}
	if maxCandidates := os.Getenv("INDAGO_DISCOVERY_MAX_CANDIDATES_PER_PAGE"); maxCandidates != "" {
		if mc, err := strconv.Atoi(maxCandidates); err == nil {
			config.Discovery.MaxCandidatesPerPage = mc
		}
	}
	if detectTools := os.Getenv("INDAGO_DISCOVERY_DETECT_TOOLS"); detectTools != "" {
		if dt, err := strconv.ParseBool(detectTools); err == nil {
			config.Discovery.DetectTools = dt
		}
	}
	if includeSnapshot := os.Getenv("INDAGO_DISCOVERY_INCLUDE_SNAPSHOT"); includeSnapshot != "" {
		if is, err := strconv.ParseBool(includeSnapshot); err == nil {
			config.Discovery.IncludeSnapshot = is
		}
	}

	// Directory configuration
	if startURL := os.Getenv("INDAGO_DIRECTORY_START_URL"); startURL != "" {
		config.Directory.StartURL = startURL
	}
	if maxPages := os.Getenv("INDAGO_DIRECTORY_MAX_PAGES"); maxPages != "" {
		if mp, err := strconv.Atoi(maxPages); err == nil {
			config.Directory.MaxPages = mp
		}
	}

	// Scheduler configuration
	if schedule := os.Getenv("INDAGO_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// CLI flags have the highest priority: defaults -> files -> env -> flags.
func ApplyFlagOverrides(config *Config, seedsFile string, budget int, schedule string) {
	if seedsFile != "" {
		config.Seeds.File = seedsFile
	}
	if budget > 0 {
		config.Discovery.RequestBudget = budget
	}
	if schedule != "" {
		config.Scheduler.Schedule = schedule
	}
}

// Validate checks the assembled configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateSchedule validates a cron schedule expression and ensures a
// minimum 5-minute interval between discovery runs.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}
	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(trimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// AllowTestURLs returns true if test URLs (localhost, 127.0.0.1, etc.) are
// allowed. Test URLs are only allowed in development mode.
func (c *Config) AllowTestURLs() bool {
	return !c.IsProduction()
}

// DeepCloneConfig creates a deep copy of the Config struct to prevent
// mutations of the original config.
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	if len(c.Classifier.ExtraInternalToolIndicators) > 0 {
		clone.Classifier.ExtraInternalToolIndicators = make([]string, len(c.Classifier.ExtraInternalToolIndicators))
		copy(clone.Classifier.ExtraInternalToolIndicators, c.Classifier.ExtraInternalToolIndicators)
	}

	if len(c.Classifier.ExtraClickableIndicators) > 0 {
		clone.Classifier.ExtraClickableIndicators = make([]string, len(c.Classifier.ExtraClickableIndicators))
		copy(clone.Classifier.ExtraClickableIndicators, c.Classifier.ExtraClickableIndicators)
	}

	if len(c.Classifier.ExtraExcludedDomains) > 0 {
		clone.Classifier.ExtraExcludedDomains = make([]string, len(c.Classifier.ExtraExcludedDomains))
		copy(clone.Classifier.ExtraExcludedDomains, c.Classifier.ExtraExcludedDomains)
	}

	return &clone
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
