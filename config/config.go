// Package config provides configuration loading and management for the
// assistant.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/sparqlassist/agent"
	"github.com/c360studio/sparqlassist/llm"
)

// Config represents the complete assistant configuration.
type Config struct {
	Model     llm.ModelConfig `yaml:"model"`
	Agent     agent.Config    `yaml:"agent"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Schema    SchemaConfig    `yaml:"schema"`
	NATS      NATSConfig      `yaml:"nats"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// EndpointsConfig locates the endpoint catalog.
type EndpointsConfig struct {
	// CatalogPath is the endpoint catalog YAML file.
	CatalogPath string `yaml:"catalog_path"`

	// Watch enables hot-reload of the catalog file.
	Watch bool `yaml:"watch"`
}

// CorpusConfig configures the retrieval corpus.
type CorpusConfig struct {
	// Patterns are doublestar globs of markdown files to index.
	Patterns []string `yaml:"patterns"`

	// ScrapeDocs enables fetching the catalog's documentation URLs at
	// index time.
	ScrapeDocs bool `yaml:"scrape_docs"`
}

// SchemaConfig configures schema acquisition and caching.
type SchemaConfig struct {
	// MaxAge is how long a fetched endpoint schema stays fresh.
	MaxAge time.Duration `yaml:"max_age"`

	// UseKV persists schemas in the NATS JetStream key-value bucket.
	UseKV bool `yaml:"use_kv"`
}

// NATSConfig configures the NATS connection for the service mode.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `yaml:"url"`
}

// HTTPConfig configures the metrics/health sidecar.
type HTTPConfig struct {
	// Addr is the listen address for /metrics and /healthz.
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: llm.ModelConfig{
			Provider: "ollama",
			Model:    "qwen2.5-coder:32b",
			URL:      "http://localhost:11434/v1",
		},
		Agent: agent.DefaultConfig(),
		Endpoints: EndpointsConfig{
			CatalogPath: "endpoints.yaml",
			Watch:       false,
		},
		Corpus: CorpusConfig{
			Patterns:   []string{"corpus/**/*.md"},
			ScrapeDocs: false,
		},
		Schema: SchemaConfig{
			MaxAge: 24 * time.Hour,
			UseKV:  false,
		},
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		HTTP: HTTPConfig{
			Addr: ":8090",
		},
	}
}

// Merge overlays the set fields of other onto c. Zero values in other count
// as unset, so a layered config file only overrides what it names.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Model != "" {
		c.Model.Model = other.Model.Model
	}
	if other.Model.URL != "" {
		c.Model.URL = other.Model.URL
	}

	// Agent
	if other.Agent.MaxAttempts > 0 {
		c.Agent.MaxAttempts = other.Agent.MaxAttempts
	}
	if other.Agent.RetrieveK > 0 {
		c.Agent.RetrieveK = other.Agent.RetrieveK
	}
	if other.Agent.Temperature != nil {
		c.Agent.Temperature = other.Agent.Temperature
	}

	// Endpoints
	if other.Endpoints.CatalogPath != "" {
		c.Endpoints.CatalogPath = other.Endpoints.CatalogPath
	}
	if other.Endpoints.Watch {
		c.Endpoints.Watch = true
	}

	// Corpus
	if len(other.Corpus.Patterns) > 0 {
		c.Corpus.Patterns = other.Corpus.Patterns
	}
	if other.Corpus.ScrapeDocs {
		c.Corpus.ScrapeDocs = true
	}

	// Schema
	if other.Schema.MaxAge > 0 {
		c.Schema.MaxAge = other.Schema.MaxAge
	}
	if other.Schema.UseKV {
		c.Schema.UseKV = true
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// HTTP
	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Model == "" {
		return fmt.Errorf("model.model is required")
	}
	if c.Agent.MaxAttempts < 1 {
		return fmt.Errorf("agent.max_attempts must be at least 1")
	}
	if c.Agent.Temperature != nil &&
		(*c.Agent.Temperature < 0 || *c.Agent.Temperature > 1) {
		return fmt.Errorf("agent.temperature must be between 0 and 1")
	}
	if c.Endpoints.CatalogPath == "" {
		return fmt.Errorf("endpoints.catalog_path is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile writes the configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
