package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/evolveapp/statusprobe/internal/feed"
	"github.com/evolveapp/statusprobe/internal/probe"
)

type API struct {
	Host         string        `mapstructure:"host"`
	FallbackHost string        `mapstructure:"fallback_host"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type Paths struct {
	History  string `mapstructure:"history"`
	Override string `mapstructure:"override"`
	Feed     string `mapstructure:"feed"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	API           API                 `mapstructure:"api"`
	Region        string              `mapstructure:"region"`
	RetentionDays int                 `mapstructure:"retention_days"`
	Endpoints     []probe.Endpoint    `mapstructure:"endpoints"`
	FallbackPaths map[string][]string `mapstructure:"fallback_paths"`
	Paths         Paths               `mapstructure:"paths"`
	Feed          feed.Config         `mapstructure:"feed"`
	Log           Log                 `mapstructure:"log"`
	Schedule      string              `mapstructure:"schedule"`
}

// Validate checks the parts of the configuration that would otherwise fail
// halfway through a run, and fills in endpoint URLs left implicit.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	seen := map[string]bool{}
	for i, ep := range c.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("endpoint %d has no name", i)
		}
		if seen[ep.Name] {
			return fmt.Errorf("duplicate endpoint name %q", ep.Name)
		}
		seen[ep.Name] = true

		if ep.URL == "" {
			if c.API.Host == "" {
				return fmt.Errorf("endpoint %q has no URL and api.host is not set", ep.Name)
			}
			c.Endpoints[i].URL = fmt.Sprintf("https://%s/%s", c.API.Host, ep.Name)
			continue
		}

		u, err := url.Parse(ep.URL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("endpoint %q has an invalid URL %q", ep.Name, ep.URL)
		}
	}

	if c.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be positive: %d", c.RetentionDays)
	}

	return nil
}
