package browser

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter implements per-domain rate limiting with token buckets.
// Each host gets its own limiter so a slow crawl of one site never
// throttles probes against another.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rps      float64
	burst    int
}

// NewDomainLimiter creates a rate limiter with the given per-domain
// requests-per-second budget and burst size
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      requestsPerSecond,
		burst:    burst,
	}
}

// Wait blocks until the rate limit for the URL's host is satisfied
func (d *DomainLimiter) Wait(ctx context.Context, rawURL string) error {
	host := extractHost(rawURL)
	if host == "" {
		return nil // No host, no rate limiting
	}

	return d.limiterFor(host).Wait(ctx)
}

// Allow reports whether a request against the URL's host may proceed now
func (d *DomainLimiter) Allow(rawURL string) bool {
	host := extractHost(rawURL)
	if host == "" {
		return true
	}
	return d.limiterFor(host).Allow()
}

// SetDomainRate overrides the rate for a specific host
func (d *DomainLimiter) SetDomainRate(host string, requestsPerSecond float64, burst int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (d *DomainLimiter) limiterFor(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	limiter, exists := d.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(d.rps), d.burst)
		d.limiters[host] = limiter
	}
	return limiter
}

// extractHost parses the host from a URL
func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
