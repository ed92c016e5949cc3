package model

import "time"

// Config is the complete casefile configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig selects and tunes the generative-text provider
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// StoreConfig selects the durable key-value store and its shared capacity
type StoreConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis, minio
	Dir           string `yaml:"dir" mapstructure:"dir"`
	CapacityBytes int64  `yaml:"capacity_bytes" mapstructure:"capacity_bytes"` // 0 = unlimited
	Namespace     string `yaml:"namespace" mapstructure:"namespace"`
	RedisURL      string `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
	MinioEndpoint string `yaml:"minio_endpoint,omitempty" mapstructure:"minio_endpoint"`
	MinioBucket   string `yaml:"minio_bucket,omitempty" mapstructure:"minio_bucket"`
	MinioRegion   string `yaml:"minio_region,omitempty" mapstructure:"minio_region"`
	MinioAccess   string `yaml:"-" mapstructure:"minio_access_key"`
	MinioSecret   string `yaml:"-" mapstructure:"minio_secret_key"`
	MinioUseSSL   bool   `yaml:"minio_use_ssl" mapstructure:"minio_use_ssl"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles provider calls
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	JSON    bool `yaml:"json" mapstructure:"json"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // dev, prod
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   90,
			MaxTokens: 4000,
		},
		Store: StoreConfig{
			Backend:       "disk",
			Dir:           "~/.casefile/store",
			CapacityBytes: 5 * 1024 * 1024, // 5 MiB
			Namespace:     "casefile:v1:",
			MinioBucket:   "casefile",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0.5,
			BurstSize:         1,
		},
		Logging: LoggingConfig{
			Mode: "dev",
		},
	}
}

// ProviderTimeout returns the provider timeout as a duration
func (c LLMConfig) ProviderTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 90 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}
