package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Email      EmailConfig      `yaml:"email"`
	Storage    StorageConfig    `yaml:"storage"`
	Queries    QueriesConfig    `yaml:"queries"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type YouTubeConfig struct {
	APIKey             string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	RegionCode         string `yaml:"region_code"`
	MaxDailyQuota      int    `yaml:"max_daily_quota"`
	RateLimitPerSecond int    `yaml:"rate_limit_per_second"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`

	// Batch classification tuning. BatchSize is capped at MaxBatchSize.
	BatchSize          int  `yaml:"batch_size"`
	Concurrency        int  `yaml:"concurrency"`
	MaxAttempts        int  `yaml:"max_attempts"`
	BackoffBaseSeconds int  `yaml:"backoff_base_seconds"`
	DescriptionLength  int  `yaml:"description_length"`
	SingleFallback     bool `yaml:"single_fallback"`
}

type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type QueriesConfig struct {
	Categories         []string `yaml:"categories"`
	MaxResultsPerQuery int      `yaml:"max_results_per_query"`
	TopN               int      `yaml:"top_n"`
	Days               int      `yaml:"days"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

// MaxBatchSize is the soft ceiling for one classification request.
const MaxBatchSize = 10

func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit file path. An empty path
// falls back to CONFIG_FILE or config.yaml.
func LoadFrom(configFile string) (*Config, error) {
	_ = godotenv.Load()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		// No config file is fine; everything can come from the environment.
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Email.Username == "" {
		cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if cfg.Email.Password == "" {
		cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.YouTube.RegionCode == "" {
		c.YouTube.RegionCode = "US"
	}
	if c.YouTube.MaxDailyQuota == 0 {
		c.YouTube.MaxDailyQuota = 8000
	}
	if c.YouTube.RateLimitPerSecond == 0 {
		c.YouTube.RateLimitPerSecond = 10
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.BatchSize == 0 {
		c.AI.BatchSize = 5
	}
	if c.AI.Concurrency == 0 {
		c.AI.Concurrency = 2
	}
	if c.AI.MaxAttempts == 0 {
		c.AI.MaxAttempts = 3
	}
	if c.AI.BackoffBaseSeconds == 0 {
		c.AI.BackoffBaseSeconds = 2
	}
	if c.AI.DescriptionLength == 0 {
		c.AI.DescriptionLength = 200
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if len(c.Queries.Categories) == 0 {
		c.Queries.Categories = []string{"dance challenge", "fitness tips", "trending music"}
	}
	if c.Queries.MaxResultsPerQuery == 0 {
		c.Queries.MaxResultsPerQuery = 20
	}
	if c.Queries.TopN == 0 {
		c.Queries.TopN = 10
	}
	if c.Queries.Days == 0 {
		c.Queries.Days = 7
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 0 9 * * *" // Daily at 9 AM
	}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("YouTube API key is required (set YOUTUBE_API_KEY or youtube.api_key)")
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	if c.AI.BatchSize < 1 || c.AI.BatchSize > MaxBatchSize {
		return fmt.Errorf("ai.batch_size must be between 1 and %d, got %d", MaxBatchSize, c.AI.BatchSize)
	}
	if c.AI.Concurrency < 1 {
		return fmt.Errorf("ai.concurrency must be at least 1, got %d", c.AI.Concurrency)
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("ai.max_attempts must be at least 1, got %d", c.AI.MaxAttempts)
	}
	if c.Email.Enabled {
		if c.Email.Username == "" {
			return fmt.Errorf("Email username is required when email is enabled (set EMAIL_USERNAME or email.username)")
		}
		if c.Email.Password == "" {
			return fmt.Errorf("Email password is required when email is enabled (set EMAIL_PASSWORD or email.password)")
		}
	}
	return nil
}
