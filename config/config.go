package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingAPIKey  = errors.New("GEMINI_API_KEY is required")
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Log     LogConfig
	CI      bool
}

type LogConfig struct {
	Level string
}

// Load читает gemini.yaml из ./config или текущей директории (если есть)
// и переменные окружения GEMINI_*.
func Load() (*Config, error) {
	return LoadFrom("./config", ".")
}

func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("gemini")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("GEMINI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// CI переменные без префикса
	_ = v.BindEnv("ci", "CI")
	_ = v.BindEnv("github_actions", "GITHUB_ACTIONS")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		APIKey:  strings.TrimSpace(v.GetString("api_key")),
		Model:   v.GetString("model"),
		BaseURL: v.GetString("base_url"),
		Timeout: v.GetDuration("timeout"),
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		CI: v.GetString("ci") == "true" || v.GetString("github_actions") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", "pro")
	v.SetDefault("base_url", "https://generativelanguage.googleapis.com/v1/models")
	v.SetDefault("timeout", "30s")
	v.SetDefault("log.level", "info")
}
