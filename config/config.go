package config

import (
	"net/url"
	"time"
	_ "time/tzdata"

	"campusdash/models"
)

type Config struct {
	ListenAddr   string        `yaml:"listen_addr"`
	LogLevel     string        `yaml:"log_level"`
	ShutdownWait time.Duration `yaml:"shutdown_wait"`
	Timezone     string        `yaml:"timezone"`
	APIBaseURL   string        `yaml:"api_base_url"`
	Panels       []PanelConfig `yaml:"panels"`
}

// PanelConfig describes one dashboard card and the endpoint feeding it. URL wins over APIBaseURL joined with Path.
type PanelConfig struct {
	Key            string             `yaml:"key"`
	Title          string             `yaml:"title"`
	Path           string             `yaml:"path"`
	URL            string             `yaml:"url"`
	Interval       time.Duration      `yaml:"interval"`
	Timeout        time.Duration      `yaml:"timeout"`
	ValueSource    models.ValueSource `yaml:"value_source"`
	Colour         string             `yaml:"colour"`
	LayoutPriority uint8              `yaml:"layout_priority"`
}

const (
	DefaultListenAddr   = ":8080"
	DefaultLogLevel     = "info"
	DefaultShutdownWait = 5 * time.Second
	DefaultTimezone     = "UTC"
	DefaultAPIBaseURL   = "https://backend-flask.onrender.com"

	DefaultPanelKey   = "daily-active-students"
	DefaultPanelTitle = "Total active users last 7 days"
	DefaultPanelPath  = "/api/on-campus/daily-total-active-students"
	DefaultColour     = "#00babc"
	DefaultInterval   = 60 * time.Second
	DefaultTimeout    = 10 * time.Second
)

// DefaultDimensions is the chart size used until a client reports the size of its container.
var DefaultDimensions = models.Dimensions{Width: 640, Height: 320}

func Default() *Config {
	return &Config{
		ListenAddr:   DefaultListenAddr,
		LogLevel:     DefaultLogLevel,
		ShutdownWait: DefaultShutdownWait,
		Timezone:     DefaultTimezone,
		APIBaseURL:   DefaultAPIBaseURL,
		Panels: []PanelConfig{
			{
				Key:            DefaultPanelKey,
				Title:          DefaultPanelTitle,
				Path:           DefaultPanelPath,
				Interval:       DefaultInterval,
				Timeout:        DefaultTimeout,
				ValueSource:    models.ValuesFromPayload,
				Colour:         DefaultColour,
				LayoutPriority: 1,
			},
		},
	}
}

// Process fills in everything a panel left unset.
func (c *Config) Process() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.ShutdownWait <= 0 {
		c.ShutdownWait = DefaultShutdownWait
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}

	for i := range c.Panels {
		p := &c.Panels[i]
		if p.Title == "" {
			p.Title = p.Key
		}
		if p.Path == "" && p.URL == "" {
			p.Path = DefaultPanelPath
		}
		if p.Interval == 0 {
			p.Interval = DefaultInterval
		}
		if p.Timeout == 0 {
			p.Timeout = min(DefaultTimeout, p.Interval)
		}
		if p.ValueSource == "" {
			p.ValueSource = models.ValuesFromPayload
		}
		if p.Colour == "" {
			p.Colour = DefaultColour
		}
		if p.LayoutPriority == 0 {
			p.LayoutPriority = uint8(min(i+1, 255))
		}
	}
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return newValidationError("listen_addr is required")
	}
	if _, err := c.Location(); err != nil {
		return newValidationError("timezone %q: %v", c.Timezone, err)
	}
	if len(c.Panels) == 0 {
		return newValidationError("at least one panel is required")
	}

	seen := make(map[string]struct{}, len(c.Panels))
	for i, p := range c.Panels {
		if p.Key == "" {
			return newValidationError("panels[%d]: key is required", i)
		}
		if _, ok := seen[p.Key]; ok {
			return newValidationError("panel %q: duplicate key", p.Key)
		}
		seen[p.Key] = struct{}{}

		if p.Interval <= 0 {
			return newValidationError("panel %q: interval (%v) must be > 0", p.Key, p.Interval)
		}
		if p.Timeout <= 0 || p.Timeout > p.Interval {
			return newValidationError("panel %q: timeout (%v) must be > 0 and <= interval (%v)",
				p.Key, p.Timeout, p.Interval)
		}
		if !p.ValueSource.Valid() {
			return newValidationError("panel %q: value_source %q must be %q or %q",
				p.Key, p.ValueSource, models.ValuesFromPayload, models.ValuesFromFixture)
		}
		if _, err := c.PanelURL(p); err != nil {
			return newValidationError("panel %q: %v", p.Key, err)
		}
	}
	return nil
}

// PanelURL resolves the endpoint a panel polls.
func (c *Config) PanelURL(p PanelConfig) (string, error) {
	raw := p.URL
	if raw == "" {
		joined, err := url.JoinPath(c.APIBaseURL, p.Path)
		if err != nil {
			return "", err
		}
		raw = joined
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", newValidationError("url %q must be absolute http(s)", raw)
	}
	return u.String(), nil
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
