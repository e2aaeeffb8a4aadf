package config

import (
	"fmt"

	"testforge/internal/ports"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig        *AppConfig
	AIConfig         *AIConfig
	BrowserConfig    *BrowserConfig
	GenerationConfig *GenerationConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type AIConfig struct {
	Enabled          bool   `envconfig:"AI_ENABLED" default:"true"`
	Provider         string `envconfig:"AI_PROVIDER" default:"anthropic"`
	APIKey           string `envconfig:"AI_API_KEY" default:""`
	Model            string `envconfig:"AI_MODEL" default:"claude-sonnet-4-20250514"`
	BaseURL          string `envconfig:"AI_BASE_URL" default:""`
	MaxRetries       int    `envconfig:"AI_MAX_RETRIES" default:"3"`
	RequestTimeout   int    `envconfig:"AI_REQUEST_TIMEOUT_MS" default:"120000"`
	HealthTimeout    int    `envconfig:"AI_HEALTH_TIMEOUT_MS" default:"5000"`
	MaxOutputTokens  int    `envconfig:"AI_MAX_OUTPUT_TOKENS" default:"4096"`
}

type BrowserConfig struct {
	Headless    bool   `envconfig:"BROWSER_HEADLESS" default:"false"`
	SlowMo      int    `envconfig:"BROWSER_SLOW_MO" default:"0"`
	Timeout     int    `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	UserDataDir string `envconfig:"BROWSER_USER_DATA_DIR" default:""`
}

type GenerationConfig struct {
	Framework           string `envconfig:"GEN_FRAMEWORK" default:"selenium-java"`
	PageObjectClassName string `envconfig:"GEN_PAGE_OBJECT_CLASS" default:"GeneratedPage"`
	TestClassName       string `envconfig:"GEN_TEST_CLASS" default:"GeneratedTest"`
	PackageName         string `envconfig:"GEN_PACKAGE" default:"com.testforge.generated"`
	OutputDir           string `envconfig:"GEN_OUTPUT_DIR" default:"./generated"`
}

// GetConfig resolves configuration from the process environment and an
// optional .env file. Secrets absent from the environment fall back to the
// credential store before validation runs.
func GetConfig(store ports.CredentialStore) (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	if conf.AIConfig.APIKey == "" && store != nil {
		if key, ok := store.Get("AI_API_KEY"); ok {
			conf.AIConfig.APIKey = key
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

// Validate rejects settings that would only fail deep inside the pipeline.
// Missing credentials with AI enabled are a configuration error and must be
// reported here, before any generation request enters the retry loop.
func (c *Config) Validate() error {
	if c.AIConfig.Enabled && c.AIConfig.APIKey == "" {
		return fmt.Errorf("AI generation is enabled but AI_API_KEY is empty")
	}

	if c.AIConfig.MaxRetries < 1 {
		return fmt.Errorf("AI_MAX_RETRIES must be at least 1, got %d", c.AIConfig.MaxRetries)
	}

	if c.AIConfig.HealthTimeout >= c.AIConfig.RequestTimeout {
		return fmt.Errorf("AI_HEALTH_TIMEOUT_MS (%d) must be shorter than AI_REQUEST_TIMEOUT_MS (%d)",
			c.AIConfig.HealthTimeout, c.AIConfig.RequestTimeout)
	}

	return nil
}
