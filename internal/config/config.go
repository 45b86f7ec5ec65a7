package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config/config.toml"

type ServerConfig struct {
	Port string `toml:"port"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type ClusteringConfig struct {
	Clusters      int    `toml:"clusters"`
	MaxIterations int    `toml:"max_iterations"`
	Seed          uint64 `toml:"seed"`
}

type CacheConfig struct {
	// TTL of a cached embedding. Zero keeps entries for the process lifetime.
	TTL Duration `toml:"ttl"`
}

type ConcurrencyConfig struct {
	Embed int `toml:"embed"`
}

type ClientConfig struct {
	Endpoint  string   `toml:"endpoint"`
	Timeout   Duration `toml:"timeout"`
	NoticeTTL Duration `toml:"notice_ttl"`
	Output    string   `toml:"output"`
	LogFile   string   `toml:"log_file"`
}

type Config struct {
	LogLevel    string            `toml:"log_level"`
	Server      ServerConfig      `toml:"server"`
	LLM         LLMConfig         `toml:"llm"`
	Clustering  ClusteringConfig  `toml:"clustering"`
	Cache       CacheConfig       `toml:"cache"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Client      ClientConfig      `toml:"client"`
}

// Duration is a time.Duration written as a Go duration string in TOML ("3s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}

// FromEnvironment loads .env, then the TOML file named by CONFIG_PATH (a
// missing file is not an error), then applies env overrides and defaults.
func FromEnvironment() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("WORDMAP_ENDPOINT"); v != "" {
		c.Client.Endpoint = v
	}
}

func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	if c.Clustering.Clusters <= 0 {
		c.Clustering.Clusters = 3
	}
	if c.Clustering.MaxIterations <= 0 {
		c.Clustering.MaxIterations = 300
	}
	if c.Concurrency.Embed <= 0 {
		c.Concurrency.Embed = 8
	}
	if c.Client.Endpoint == "" {
		c.Client.Endpoint = "http://localhost:" + c.Server.Port + "/get_embeddings"
	}
	if c.Client.NoticeTTL.Duration <= 0 {
		c.Client.NoticeTTL.Duration = 3 * time.Second
	}
	if c.Client.Output == "" {
		c.Client.Output = "wordmap.html"
	}
	if c.Client.LogFile == "" {
		c.Client.LogFile = "wordmap.log"
	}
}

// Validate checks the settings the embedding server needs.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("an API key is required for provider %q (set LLM_API_KEY)", c.LLM.Provider)
		}
	case "ollama":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is required for provider ollama")
		}
	default:
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}
