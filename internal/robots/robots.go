// Package robots fetches, parses, and caches robots.txt policies and
// answers allow/disallow questions for the "*" user agent.
package robots

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const MaxCacheAge = 24 * time.Hour

type entry struct {
	policy    *policy
	fetchedAt time.Time
}

// Cache holds one parsed policy per scheme://host, refreshed after
// MaxCacheAge. A nil policy means the last fetch failed, which is treated
// as "allow everything". A per-origin lock is held across fetch+insert, the
// same way pkg/limiter.HostLimiter holds a per-host lock across its
// check-then-update, so concurrent workers hitting the same uncached origin
// serialize behind one fetch instead of each issuing their own.
type Cache struct {
	client    *http.Client
	userAgent string

	mu       sync.Mutex
	originMu map[string]*sync.Mutex
	entries  map[string]entry
}

func NewCache(userAgent string, timeout time.Duration) *Cache {
	return &Cache{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		originMu:  make(map[string]*sync.Mutex),
		entries:   make(map[string]entry),
	}
}

// Allowed reports whether rawURL may be fetched under the cached policy for
// its origin. Any parse or fetch failure defaults to true (allow), since
// the crawler must make forward progress.
func (c *Cache) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	origin := u.Scheme + "://" + u.Host

	p := c.policyFor(origin)
	if p == nil {
		return true
	}
	return p.allows(u.Path)
}

func (c *Cache) policyFor(origin string) *policy {
	lock := c.lockFor(origin)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	e, ok := c.entries[origin]
	c.mu.Unlock()

	if ok && time.Since(e.fetchedAt) <= MaxCacheAge {
		return e.policy
	}

	p := c.fetch(origin)

	c.mu.Lock()
	c.entries[origin] = entry{policy: p, fetchedAt: time.Now()}
	c.mu.Unlock()

	return p
}

func (c *Cache) lockFor(origin string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.originMu[origin]
	if !ok {
		lock = &sync.Mutex{}
		c.originMu[origin] = lock
	}
	return lock
}

func (c *Cache) fetch(origin string) *policy {
	req, err := http.NewRequest(http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	p := parse(string(body))
	return p
}

// policy holds the allow/disallow prefix rules for the "*" user agent
// group, selected by specificity at parse time.
type policy struct {
	allowRules    []string
	disallowRules []string
}

// allows implements the longest-matching-rule decision: the prefix rule
// with the longest match wins; ties favor allow.
func (p *policy) allows(path string) bool {
	if path == "" {
		path = "/"
	}

	bestAllowLen := -1
	for _, rule := range p.allowRules {
		if strings.HasPrefix(path, rule) && len(rule) > bestAllowLen {
			bestAllowLen = len(rule)
		}
	}
	bestDisallowLen := -1
	for _, rule := range p.disallowRules {
		if strings.HasPrefix(path, rule) && len(rule) > bestDisallowLen {
			bestDisallowLen = len(rule)
		}
	}

	if bestDisallowLen < 0 {
		return true
	}
	return bestAllowLen >= bestDisallowLen
}
