// Package config manages the lexbud configuration file at ~/.lexbud/config.yaml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hpkotak/lexbud/internal/provider"
)

var ErrNotFound = errors.New("config file not found")

// Environment variables that override the file.
const (
	EnvHostedBaseURL = "HOSTED_BASE_URL"
	EnvHostedAPIKey  = "HOSTED_API_KEY"
	EnvLocalBaseURL  = "LOCAL_BASE_URL"
)

type Config struct {
	Model   string        `yaml:"model"`
	Models  []string      `yaml:"models"`
	Hosted  Hosted        `yaml:"hosted"`
	Local   Local         `yaml:"local"`
	Timeout time.Duration `yaml:"timeout"`
	Server  Server        `yaml:"server"`
}

type Hosted struct {
	BaseURL  string   `yaml:"base_url"`
	Prefixes []string `yaml:"prefixes"`
	// APIKey only ever comes from the environment.
	APIKey string `yaml:"-"`
}

type Local struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

// Dir returns the config directory path (~/.lexbud).
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lexbud")
}

// Path returns the config file path (~/.lexbud/config.yaml).
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Exists checks if the config file exists.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load reads and parses the config file. Returns ErrNotFound if it doesn't exist.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Missing keys keep their defaults.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func Save(cfg *Config) error {
	return saveTo(Path(), cfg)
}

func saveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Marshal encodes cfg as YAML. The API key is never included.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Model:  "meta-llama/Meta-Llama-3.2-11B-Vision-Instruct-Turbo",
		Models: []string{"meta-llama/Meta-Llama-3.2-11B-Vision-Instruct-Turbo", "llama3.2"},
		Hosted: Hosted{
			BaseURL:  "https://api.together.xyz/v1",
			Prefixes: []string{"meta-llama/"},
		},
		Local: Local{
			URL:   "http://localhost:11434/api/chat",
			Model: "llama3.2",
		},
		Timeout: 120 * time.Second,
		Server:  Server{Addr: "127.0.0.1:8501"},
	}
}

// ApplyEnv loads envFiles (a missing file is not an error) and overlays the
// process environment. Variables already set in the process win over files.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvHostedBaseURL)); v != "" {
		c.Hosted.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHostedAPIKey)); v != "" {
		c.Hosted.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLocalBaseURL)); v != "" {
		c.Local.URL = v
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if strings.TrimSpace(c.Local.Model) == "" {
		return fmt.Errorf("local.model cannot be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	for name, raw := range map[string]string{"hosted.base_url": c.Hosted.BaseURL, "local.url": c.Local.URL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
		}
	}
	if _, err := c.Selector().Classify(c.Model); err != nil {
		return fmt.Errorf("default model: %w", err)
	}
	return nil
}

// Resolve loads the config file, or the defaults when there is none, applies
// the environment and validates the result.
func Resolve(envFiles ...string) (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, ErrNotFound) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Selector builds the backend selector for this config.
func (c *Config) Selector() provider.Selector {
	return provider.Selector{
		HostedPrefixes: c.Hosted.Prefixes,
		HostedEndpoint: c.Hosted.BaseURL,
		HostedKey:      c.Hosted.APIKey,
		LocalModel:     c.Local.Model,
		LocalEndpoint:  c.Local.URL,
	}
}

// Dispatcher builds a dispatcher for this config.
func (c *Config) Dispatcher() *provider.Dispatcher {
	return &provider.Dispatcher{
		Selector:     c.Selector(),
		DefaultModel: c.Model,
		Timeout:      c.Timeout,
	}
}

// CatalogueModels returns the selectable models with the default model first.
func (c *Config) CatalogueModels() []string {
	models := []string{c.Model}
	for _, m := range c.Models {
		if m != "" && !slices.Contains(models, m) {
			models = append(models, m)
		}
	}
	return models
}
