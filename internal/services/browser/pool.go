package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
)

// Pool manages a set of Chrome browser contexts for page rendering and
// click probing. Provides round-robin allocation and proper resource
// management; each crawl request opens its own tab on a pooled browser.
type Pool struct {
	browsers         []context.Context
	browserCancels   []context.CancelFunc
	allocatorCancels []context.CancelFunc
	mu               sync.Mutex
	size             int
	currentIndex     int
	logger           arbor.ILogger
	userAgent        string
	initialized      bool
}

// NewPool creates a new browser pool
func NewPool(logger arbor.ILogger) *Pool {
	return &Pool{
		logger:      logger,
		initialized: false,
	}
}

// Init starts the configured number of browser instances
func (p *Pool) Init(config common.BrowserConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return fmt.Errorf("browser pool already initialized")
	}

	if config.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be greater than 0, got: %d", config.PoolSize)
	}
	if config.PoolSize > 16 {
		p.logger.Warn().
			Int("pool_size", config.PoolSize).
			Msg("Large browser pool size detected - this may consume significant memory")
	}
	if config.UserAgent == "" {
		config.UserAgent = "Indago-Discovery/1.0"
		p.logger.Debug().Msg("Using default user agent")
	}

	p.size = config.PoolSize
	p.userAgent = config.UserAgent
	p.browsers = make([]context.Context, 0, p.size)
	p.browserCancels = make([]context.CancelFunc, 0, p.size)
	p.allocatorCancels = make([]context.CancelFunc, 0, p.size)
	p.currentIndex = 0

	p.logger.Info().
		Int("pool_size", p.size).
		Str("user_agent", p.userAgent).
		Bool("headless", config.Headless).
		Msg("Initializing browser pool")

	// Create browser instances with error handling
	successCount := 0
	var lastErr error
	for i := 0; i < p.size; i++ {
		if err := p.createBrowserInstance(i, config); err != nil {
			lastErr = err
			p.logger.Warn().
				Err(err).
				Int("browser_index", i).
				Int("successful_instances", successCount).
				Msg("Failed to create browser instance")

			// If we can't create any instances, fail completely
			if successCount == 0 {
				p.cleanupInstances()
				return fmt.Errorf("failed to create any browser instances, last error: %w", err)
			}

			continue
		}
		successCount++
	}

	if successCount < p.size {
		p.logger.Warn().
			Int("requested", p.size).
			Int("created", successCount).
			Err(lastErr).
			Msg("Created fewer browser instances than requested")
		p.size = successCount
	}

	p.initialized = true
	p.logger.Info().
		Int("browsers_created", len(p.browsers)).
		Msg("Browser pool initialized successfully")

	return nil
}

// createBrowserInstance creates a single browser instance and adds it to the pool
func (p *Pool) createBrowserInstance(index int, config common.BrowserConfig) error {
	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(config.UserAgent),
	)
	if config.Headless {
		// New headless mode renders closer to a real browser
		allocatorOpts = append(allocatorOpts, chromedp.Flag("headless", "new"))
	} else {
		allocatorOpts = append(allocatorOpts, chromedp.Flag("headless", false))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(
		context.Background(),
		allocatorOpts...,
	)

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	// Test the browser instance by running a simple task with timeout
	testTimeout := 30 * time.Second
	if config.NavigationTimeout > 0 {
		testTimeout = config.NavigationTimeout
	}

	testCtx, testCancel := context.WithTimeout(browserCtx, testTimeout)
	defer testCancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser instance failed startup test: %w", err)
	}

	var title string
	if err := chromedp.Run(testCtx, chromedp.Title(&title)); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser instance failed responsiveness test: %w", err)
	}

	p.browsers = append(p.browsers, browserCtx)
	p.browserCancels = append(p.browserCancels, browserCancel)
	p.allocatorCancels = append(p.allocatorCancels, allocatorCancel)

	p.logger.Debug().
		Int("browser_index", index).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser instance created and tested successfully")

	return nil
}

// GetBrowser returns a browser context from the pool using round-robin allocation.
// Returns the browser context and a release function that should be called when done.
func (p *Pool) GetBrowser() (context.Context, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil, nil, fmt.Errorf("browser pool not initialized")
	}

	if len(p.browsers) == 0 {
		return nil, nil, fmt.Errorf("no browser instances available")
	}

	index := p.currentIndex % len(p.browsers)
	p.currentIndex = (p.currentIndex + 1) % len(p.browsers)

	browserCtx := p.browsers[index]

	releaseFunc := func() {
		p.logger.Debug().
			Int("browser_index", index).
			Msg("Browser context released")
	}

	p.logger.Debug().
		Int("browser_index", index).
		Int("total_browsers", len(p.browsers)).
		Msg("Browser context allocated from pool")

	return browserCtx, releaseFunc, nil
}

// Shutdown cleans up all browser instances in the pool
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		p.logger.Debug().Msg("Browser pool already shut down or never initialized")
		return nil
	}

	startTime := time.Now()
	browserCount := len(p.browsers)

	p.logger.Info().
		Int("browser_count", browserCount).
		Msg("Shutting down browser pool")

	// Cleanup with timeout to prevent hanging
	done := make(chan struct{})
	go func() {
		p.cleanupInstances()
		close(done)
	}()

	select {
	case <-done:
		// Cleanup completed successfully
	case <-time.After(30 * time.Second):
		p.logger.Warn().
			Int("browser_count", browserCount).
			Msg("Browser pool shutdown timed out, forcing cleanup")
		p.cleanupInstances()
	}

	p.initialized = false

	p.logger.Info().
		Int("browsers_shutdown", browserCount).
		Dur("shutdown_time", time.Since(startTime)).
		Msg("Browser pool shut down successfully")

	return nil
}

// cleanupInstances cleans up all browser instances (must be called with mutex held)
func (p *Pool) cleanupInstances() {
	for i, cancel := range p.browserCancels {
		if cancel != nil {
			cancel()
			p.logger.Debug().
				Int("browser_index", i).
				Msg("Browser context cancelled")
		}
	}

	for i, cancel := range p.allocatorCancels {
		if cancel != nil {
			cancel()
			p.logger.Debug().
				Int("browser_index", i).
				Msg("Browser allocator cancelled")
		}
	}

	p.browsers = nil
	p.browserCancels = nil
	p.allocatorCancels = nil
	p.currentIndex = 0
}

// Stats returns statistics about the browser pool
func (p *Pool) Stats() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	return map[string]interface{}{
		"pool_size":        p.size,
		"active_instances": len(p.browsers),
		"initialized":      p.initialized,
		"current_index":    p.currentIndex,
	}
}

// IsInitialized returns whether the browser pool has been initialized
func (p *Pool) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}
