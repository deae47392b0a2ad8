package judge0

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultMaxRetries     = 10
	defaultInitialDelay   = time.Second
	defaultMaxDelay       = 10 * time.Second
)

// Config holds the Judge0 endpoint and polling settings.
type Config struct {
	// BaseURL is the Judge0 API root, e.g. "http://judge0:2358".
	BaseURL string `yaml:"baseURL"`
	// AuthToken is sent as X-Auth-Token when set.
	AuthToken string `yaml:"authToken"`
	// Timeout bounds each HTTP call to the judge.
	Timeout time.Duration `yaml:"timeout"`
	Poll    PollPolicy    `yaml:"poll"`
}

// PollPolicy bounds result polling.
type PollPolicy struct {
	// MaxRetries is the number of status queries before giving up.
	MaxRetries   int           `yaml:"maxRetries"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// DefaultPollPolicy returns 10 rounds with backoff from 1s doubling to a 10s cap.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
	}
}

// ApplyDefaults fills zero values and validates BaseURL.
func (c *Config) ApplyDefaults() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return fmt.Errorf("judge0 base url is required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("judge0 base url is invalid: %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultRequestTimeout
	}
	defaults := DefaultPollPolicy()
	if c.Poll.MaxRetries <= 0 {
		c.Poll.MaxRetries = defaults.MaxRetries
	}
	if c.Poll.InitialDelay <= 0 {
		c.Poll.InitialDelay = defaults.InitialDelay
	}
	if c.Poll.MaxDelay <= 0 {
		c.Poll.MaxDelay = defaults.MaxDelay
	}
	if c.Poll.MaxDelay < c.Poll.InitialDelay {
		c.Poll.MaxDelay = c.Poll.InitialDelay
	}
	return nil
}
