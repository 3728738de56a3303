package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the configuration from an optional YAML file and from the
// environment. Environment variables win over the file; the file wins over
// the defaults set here.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("api.timeout", "5s")
	v.SetDefault("region", "gha")
	v.SetDefault("retention_days", 90)
	v.SetDefault("paths.history", "public/history.json")
	v.SetDefault("paths.override", "public/override.json")
	v.SetDefault("paths.feed", "public/feed.xml")
	v.SetDefault("feed.title", "Service Status")
	v.SetDefault("feed.description", "Incident history")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
