// Package config loads server configuration from TOML with ${VAR} environment
// expansion.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/toolgate/toolgate/consent"
	"github.com/toolgate/toolgate/resource"
)

type Config struct {
	Server       ServerConfig     `toml:"server"`
	Capabilities map[string]bool  `toml:"capabilities"`
	Cache        CacheConfig      `toml:"cache"`
	Streaming    StreamingConfig  `toml:"streaming"`
	Consent      ConsentConfig    `toml:"consent"`
	Sensitive    SensitiveConfig  `toml:"sensitive"`
	Providers    []ProviderConfig `toml:"providers"`
}

type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type CacheConfig struct {
	Enabled            bool  `toml:"enabled"`
	MaxSize            int   `toml:"max_size"`
	TTLSeconds         int   `toml:"ttl_seconds"`
	MaxSizePerResource int64 `toml:"max_size_per_resource"`
}

type StreamingConfig struct {
	Enabled        bool              `toml:"enabled"`
	ChunkSize      int               `toml:"chunk_size"`
	BufferSize     int               `toml:"buffer_size"`
	IdleTTLSeconds int               `toml:"idle_ttl_seconds"`
	Compression    CompressionConfig `toml:"compression"`
}

type CompressionConfig struct {
	Enabled      bool     `toml:"enabled"`
	MinSize      int64    `toml:"min_size"`
	Algorithm    string   `toml:"algorithm"`
	Level        int      `toml:"level"`
	ExcludeTypes []string `toml:"exclude_types"`
}

type ConsentConfig struct {
	MaxViolationsHistory int               `toml:"max_violations_history"`
	Roles                map[string]string `toml:"roles"`
}

type SensitiveConfig struct {
	PathPrefixes []string `toml:"path_prefixes"`
	Extensions   []string `toml:"extensions"`
}

type ProviderConfig struct {
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"`
}

// Load reads config from the given path, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if _, err := toml.Decode(expandEnvVars(string(data)), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "toolgate"
	}
	if c.Server.Version == "" {
		c.Server.Version = "0.1"
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 50
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.Cache.MaxSizePerResource == 0 {
		c.Cache.MaxSizePerResource = 1 << 20
	}
	if c.Streaming.ChunkSize == 0 {
		c.Streaming.ChunkSize = resource.DefaultChunkSize
	}
	if c.Consent.MaxViolationsHistory == 0 {
		c.Consent.MaxViolationsHistory = consent.DefaultMaxViolationsHistory
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for _, provider := range c.Providers {
		if provider.Name == "" {
			return fmt.Errorf("provider name is required")
		}
		if provider.BaseURL == "" {
			return fmt.Errorf("provider %q: base_url is required", provider.Name)
		}
		if seen[provider.Name] {
			return fmt.Errorf("duplicate provider %q", provider.Name)
		}
		seen[provider.Name] = true
	}
	for role, tier := range c.Consent.Roles {
		if _, err := consent.ParseTier(tier); err != nil {
			return fmt.Errorf("role %q: %w", role, err)
		}
	}
	return nil
}

// GateConfig translates the consent section into a gate config.
func (c *Config) GateConfig() *consent.Config {
	roles := map[string]consent.Tier{}
	for role, name := range c.Consent.Roles {
		tier, err := consent.ParseTier(name)
		if err != nil {
			continue // rejected by Validate
		}
		roles[role] = tier
	}
	return &consent.Config{
		MaxViolationsHistory: c.Consent.MaxViolationsHistory,
		Roles:                roles,
	}
}

// ProviderConfigs translates provider sections into resource provider configs.
func (c *Config) ProviderConfigs() []*resource.Config {
	var result []*resource.Config
	for _, provider := range c.Providers {
		result = append(result, &resource.Config{
			Name:         provider.Name,
			BaseURL:      provider.BaseURL,
			CacheEnabled: c.Cache.Enabled,
			Cache: resource.CacheConfig{
				MaxSize:            c.Cache.MaxSize,
				TTL:                time.Duration(c.Cache.TTLSeconds) * time.Second,
				MaxSizePerResource: c.Cache.MaxSizePerResource,
			},
			Streaming: resource.StreamingConfig{
				Enabled:    c.Streaming.Enabled,
				ChunkSize:  c.Streaming.ChunkSize,
				BufferSize: c.Streaming.BufferSize,
				IdleTTL:    time.Duration(c.Streaming.IdleTTLSeconds) * time.Second,
				Compression: resource.CompressionConfig{
					Enabled:      c.Streaming.Compression.Enabled,
					MinSize:      c.Streaming.Compression.MinSize,
					Algorithm:    c.Streaming.Compression.Algorithm,
					Level:        c.Streaming.Compression.Level,
					ExcludeTypes: c.Streaming.Compression.ExcludeTypes,
				},
			},
			SensitivePrefixes:   c.Sensitive.PathPrefixes,
			SensitiveExtensions: c.Sensitive.Extensions,
		})
	}
	return result
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}
