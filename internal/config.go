package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mkessler/ablage/internal/classify"
	"github.com/mkessler/ablage/internal/models"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Vault    VaultConfig       `yaml:"vault"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Blobs    BlobConfig        `yaml:"blobs"`
	Analyzer AnalyzerConfig    `yaml:"analyzer"`
	Rules    []RuleConfig      `yaml:"rules"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Blobs.Validate(); err != nil {
		return err
	}
	return c.Analyzer.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// VaultConfig holds the path to the document vault root.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the dataset database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// BlobConfig holds the attachment store configuration.
type BlobConfig struct {
	Path      string `yaml:"path"`
	CacheSize int    `yaml:"cache_size"`
}

// Validate validates the blob configuration.
func (c *BlobConfig) Validate() error {
	if c.CacheSize == 0 {
		c.CacheSize = 128
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.CacheSize, validation.Min(1)),
	)
}

// AnalyzerConfig controls the optional AI enrichment step.
//
// When Enabled is true an API key must be present; DelaySeconds is the
// cooperative rate-limit pause before each analyzer call.
type AnalyzerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	DelaySeconds int    `yaml:"delay_seconds"`
}

// Validate validates the analyzer configuration.
func (c *AnalyzerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.APIKey == "" {
		return fmt.Errorf("analyzer: enabled but api_key is empty")
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DelaySeconds, validation.Min(0)),
	)
}

// Delay returns the configured inter-file delay.
func (c *AnalyzerConfig) Delay() time.Duration {
	if c.DelaySeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.DelaySeconds) * time.Second
}

// RuleConfig is one user-defined classification rule: a category plus the
// keywords that vote for it.
type RuleConfig struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// UserRules flattens the configured rules into classifier rules, preserving
// declaration order for deterministic tie-breaking.
func (c *Config) UserRules() []classify.Rule {
	var out []classify.Rule
	for _, rc := range c.Rules {
		cat := models.CustomCategory(rc.Category)
		for _, kw := range rc.Keywords {
			out = append(out, classify.Rule{Keyword: kw, Category: cat})
		}
	}
	return out
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./ablage.db",
		},
		Blobs: BlobConfig{
			Path:      "./blobs",
			CacheSize: 128,
		},
		Analyzer: AnalyzerConfig{
			DelaySeconds: 1,
		},
	}
}
