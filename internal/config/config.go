// Package config loads the YAML configuration recognized by
// spec.md §6, following an env-expansion and defaults-then-validate
// pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the embeddable database's configuration.
type Config struct {
	Name           string               `yaml:"name"`
	DirectoryURL   string               `yaml:"directoryURL"`
	Dimension      int                  `yaml:"dimension"`
	MemoryStrategy MemoryStrategyConfig `yaml:"memoryStrategy"`
	SearchOptions  SearchOptionsConfig  `yaml:"searchOptions"`
	Embedding      EmbeddingConfig      `yaml:"embedding"`
	Storage        StorageConfig        `yaml:"storage"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// MemoryStrategyConfig is the YAML shape of the tagged MemoryStrategy
// (spec.md §3): Kind selects which of the remaining fields apply.
type MemoryStrategyConfig struct {
	Kind                 string `yaml:"kind"` // "fullMemory" | "indexed" | "automatic"
	Threshold            int    `yaml:"threshold"`
	CandidateMultiplier  int    `yaml:"candidateMultiplier"`
	BatchSize            int    `yaml:"batchSize"`
	MaxConcurrentBatches int    `yaml:"maxConcurrentBatches"`
}

// SearchOptionsConfig holds search defaults and hybrid/BM25 tuning.
// Hybrid must be set explicitly; HybridWeight and BM25NormalizationFactor
// only take effect when it is true.
type SearchOptionsConfig struct {
	DefaultNumResults       int      `yaml:"defaultNumResults"`
	MinThreshold            *float32 `yaml:"minThreshold"`
	Hybrid                  bool     `yaml:"hybrid"`
	HybridWeight            float32  `yaml:"hybridWeight"`
	BM25NormalizationFactor float32  `yaml:"bm25NormalizationFactor"`
	BleveIndexPath          string   `yaml:"bleveIndexPath"`
	K1                      float32  `yaml:"k1"`
	B                       float32  `yaml:"b"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "openai" is the only built-in provider
	APIKey     string `yaml:"apiKey"`
	BaseURL    string `yaml:"baseURL"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	Cache      bool   `yaml:"cache"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // "file" | "memory" | "redis"
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis/valkey storage backend.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file by environment name.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with the defaults spec.md §6 leaves
// implementation-chosen.
func (c *Config) ApplyDefaults() {
	if c.MemoryStrategy.Kind == "" {
		c.MemoryStrategy.Kind = "automatic"
	}
	if c.MemoryStrategy.Threshold <= 0 {
		c.MemoryStrategy.Threshold = 1000
	}
	if c.MemoryStrategy.CandidateMultiplier <= 0 {
		c.MemoryStrategy.CandidateMultiplier = 3
	}
	if c.MemoryStrategy.BatchSize <= 0 {
		c.MemoryStrategy.BatchSize = 100
	}
	if c.MemoryStrategy.MaxConcurrentBatches <= 0 {
		c.MemoryStrategy.MaxConcurrentBatches = 4
	}
	if c.SearchOptions.DefaultNumResults <= 0 {
		c.SearchOptions.DefaultNumResults = 10
	}
	if c.SearchOptions.HybridWeight == 0 {
		c.SearchOptions.HybridWeight = 0.5
	}
	if c.SearchOptions.BM25NormalizationFactor <= 0 {
		c.SearchOptions.BM25NormalizationFactor = 10.0
	}
	if c.SearchOptions.K1 == 0 {
		c.SearchOptions.K1 = 1.2
	}
	if c.SearchOptions.B == 0 {
		c.SearchOptions.B = 0.75
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	switch c.MemoryStrategy.Kind {
	case "fullMemory", "indexed", "automatic":
	default:
		return fmt.Errorf("memoryStrategy.kind must be fullMemory, indexed, or automatic, got %q", c.MemoryStrategy.Kind)
	}
	switch c.Storage.Backend {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("storage.backend must be file, memory, or redis, got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "redis" && len(c.Storage.Redis.Addrs) == 0 {
		return fmt.Errorf("storage.redis.addrs is required when storage.backend is redis")
	}
	return nil
}

func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
