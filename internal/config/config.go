// Package config holds the crawler's runtime configuration, built with a
// chained WithX(...)/Build() pattern so a caller can start from defaults
// and override only what it needs, or load everything from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	seedURLs     []url.URL
	saveFile     string
	threadsCount int
	timeDelay    time.Duration
	cacheServer  string
	allowedHosts map[string]struct{}

	jitter                 time.Duration
	randomSeed             int64
	maxAttempt             int
	backoffInitialDuration time.Duration
	backoffMultiplier      float64
	backoffMaxDuration     time.Duration

	userAgent string
	timeout   time.Duration
}

type configDTO struct {
	SeedURLs               []string `json:"seedUrls"`
	SaveFile               string   `json:"saveFile,omitempty"`
	ThreadsCount           int      `json:"threadsCount,omitempty"`
	TimeDelaySeconds       float64  `json:"timeDelaySeconds,omitempty"`
	CacheServer            string   `json:"cacheServer,omitempty"`
	AllowedHosts           []string `json:"allowedHosts,omitempty"`
	JitterMillis           int64    `json:"jitterMillis,omitempty"`
	RandomSeed             int64    `json:"randomSeed,omitempty"`
	MaxAttempt             int      `json:"maxAttempt,omitempty"`
	BackoffInitialMillis   int64    `json:"backoffInitialMillis,omitempty"`
	BackoffMultiplier      float64  `json:"backoffMultiplier,omitempty"`
	BackoffMaxMillis       int64    `json:"backoffMaxMillis,omitempty"`
	UserAgent              string   `json:"userAgent,omitempty"`
	TimeoutSeconds         float64  `json:"timeoutSeconds,omitempty"`
}

// WithDefault returns a Config seeded with seedURLs and default values for
// everything else. seedURLs is mandatory; Build returns an error if empty.
func WithDefault(seedURLs []url.URL) *Config {
	return &Config{
		seedURLs:     seedURLs,
		threadsCount: 10,
		timeDelay:    time.Second,
		allowedHosts: map[string]struct{}{},

		jitter:                 250 * time.Millisecond,
		randomSeed:             1,
		maxAttempt:             5,
		backoffInitialDuration: 200 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,

		userAgent: "ics-crawl/1.0",
		timeout:   10 * time.Second,
	}
}

func (c *Config) WithSeedURLs(urls []url.URL) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithSaveFile(path string) *Config {
	c.saveFile = path
	return c
}

func (c *Config) WithThreadsCount(n int) *Config {
	c.threadsCount = n
	return c
}

func (c *Config) WithTimeDelay(d time.Duration) *Config {
	c.timeDelay = d
	return c
}

func (c *Config) WithCacheServer(addr string) *Config {
	c.cacheServer = addr
	return c
}

func (c *Config) WithAllowedHosts(hosts map[string]struct{}) *Config {
	c.allowedHosts = hosts
	return c
}

func (c *Config) WithJitter(d time.Duration) *Config {
	c.jitter = d
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(n int) *Config {
	c.maxAttempt = n
	return c
}

func (c *Config) WithBackoffInitialDuration(d time.Duration) *Config {
	c.backoffInitialDuration = d
	return c
}

func (c *Config) WithBackoffMultiplier(m float64) *Config {
	c.backoffMultiplier = m
	return c
}

func (c *Config) WithBackoffMaxDuration(d time.Duration) *Config {
	c.backoffMaxDuration = d
	return c
}

func (c *Config) WithUserAgent(ua string) *Config {
	c.userAgent = ua
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.timeout = d
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}
	if c.saveFile == "" {
		return Config{}, fmt.Errorf("%w: saveFile cannot be empty", ErrInvalidConfig)
	}
	if c.threadsCount <= 0 {
		return Config{}, fmt.Errorf("%w: threadsCount must be positive", ErrInvalidConfig)
	}
	if len(c.allowedHosts) == 0 {
		c.allowedHosts = defaultAllowedHosts()
	}
	return *c, nil
}

func defaultAllowedHosts() map[string]struct{} {
	return map[string]struct{}{
		"ics.uci.edu":         {},
		"cs.uci.edu":          {},
		"informatics.uci.edu": {},
		"stat.uci.edu":        {},
	}
}

func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	var dto configDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}
	return newConfigFromDTO(dto)
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	seedURLs := make([]url.URL, 0, len(dto.SeedURLs))
	for _, raw := range dto.SeedURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid seed url %q: %s", ErrConfigParsingFail, raw, err.Error())
		}
		seedURLs = append(seedURLs, *u)
	}

	builder := WithDefault(seedURLs)

	if dto.SaveFile != "" {
		builder.WithSaveFile(dto.SaveFile)
	}
	if dto.ThreadsCount != 0 {
		builder.WithThreadsCount(dto.ThreadsCount)
	}
	if dto.TimeDelaySeconds != 0 {
		builder.WithTimeDelay(time.Duration(dto.TimeDelaySeconds * float64(time.Second)))
	}
	if dto.CacheServer != "" {
		builder.WithCacheServer(dto.CacheServer)
	}
	if len(dto.AllowedHosts) > 0 {
		hosts := make(map[string]struct{}, len(dto.AllowedHosts))
		for _, h := range dto.AllowedHosts {
			hosts[h] = struct{}{}
		}
		builder.WithAllowedHosts(hosts)
	}
	if dto.JitterMillis != 0 {
		builder.WithJitter(time.Duration(dto.JitterMillis) * time.Millisecond)
	}
	if dto.RandomSeed != 0 {
		builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempt != 0 {
		builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffInitialMillis != 0 {
		builder.WithBackoffInitialDuration(time.Duration(dto.BackoffInitialMillis) * time.Millisecond)
	}
	if dto.BackoffMultiplier != 0 {
		builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxMillis != 0 {
		builder.WithBackoffMaxDuration(time.Duration(dto.BackoffMaxMillis) * time.Millisecond)
	}
	if dto.UserAgent != "" {
		builder.WithUserAgent(dto.UserAgent)
	}
	if dto.TimeoutSeconds != 0 {
		builder.WithTimeout(time.Duration(dto.TimeoutSeconds * float64(time.Second)))
	}

	return builder.Build()
}

func (c Config) SeedURLs() []url.URL {
	urls := make([]url.URL, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) SaveFile() string { return c.saveFile }

func (c Config) ThreadsCount() int { return c.threadsCount }

func (c Config) TimeDelay() time.Duration { return c.timeDelay }

func (c Config) CacheServer() string { return c.cacheServer }

func (c Config) AllowedHosts() map[string]struct{} {
	hosts := make(map[string]struct{}, len(c.allowedHosts))
	for k, v := range c.allowedHosts {
		hosts[k] = v
	}
	return hosts
}

func (c Config) Jitter() time.Duration { return c.jitter }

func (c Config) RandomSeed() int64 { return c.randomSeed }

func (c Config) MaxAttempt() int { return c.maxAttempt }

func (c Config) BackoffInitialDuration() time.Duration { return c.backoffInitialDuration }

func (c Config) BackoffMultiplier() float64 { return c.backoffMultiplier }

func (c Config) BackoffMaxDuration() time.Duration { return c.backoffMaxDuration }

func (c Config) UserAgent() string { return c.userAgent }

func (c Config) Timeout() time.Duration { return c.timeout }
