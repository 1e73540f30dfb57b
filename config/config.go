// Package config loads service settings from an optional JSON/YAML file and
// SLIDEDECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/render"
)

const EnvPrefix = "SLIDEDECK"

// Config holds all configuration for the deck generator.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Generation GenerationConfig `mapstructure:"generation"`
	Render     RenderConfig     `mapstructure:"render"`
	Output     OutputConfig     `mapstructure:"output"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Address        string          `mapstructure:"address"`
	CORSOrigins    []string        `mapstructure:"cors_origins"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig is the per-client token bucket; RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be greater than zero")
	}
	if s.RateLimit.RPS > 0 && s.RateLimit.Burst < 1 {
		return fmt.Errorf("server.rate_limit.burst must be at least 1 when rps is set")
	}
	return nil
}

// LLMConfig selects and authenticates the upstream model.
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // openai, deepseek, gemini, mock
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

// Settings converts the section for generator.NewLLM.
func (l LLMConfig) Settings() generator.LLMSettings {
	return generator.LLMSettings{
		Provider:       strings.ToLower(strings.TrimSpace(l.Provider)),
		Model:          l.Model,
		APIKey:         l.APIKey,
		BaseURL:        l.BaseURL,
		RequestTimeout: l.AttemptTimeout,
	}
}

type RetryConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BaseDelay     time.Duration `mapstructure:"base_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
	UpstreamRPS   float64       `mapstructure:"upstream_rps"`
	UpstreamBurst int           `mapstructure:"upstream_burst"`
}

func (r RetryConfig) Validate() error {
	if r.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if r.BaseDelay < 0 {
		return fmt.Errorf("retry.base_delay must not be negative")
	}
	if r.MaxDelay > 0 && r.MaxDelay < r.BaseDelay {
		return fmt.Errorf("retry.max_delay must not be below retry.base_delay")
	}
	if r.UpstreamRPS > 0 && r.UpstreamBurst < 1 {
		return fmt.Errorf("retry.upstream_burst must be at least 1 when upstream_rps is set")
	}
	return nil
}

// GenerationConfig bounds caller input and sets the empty-outline and
// emphasis-cleanup policies.
type GenerationConfig struct {
	MinInputChars      int  `mapstructure:"min_input_chars"`
	MaxInputChars      int  `mapstructure:"max_input_chars"`
	MaxToneChars       int  `mapstructure:"max_tone_chars"`
	DefaultSlides      int  `mapstructure:"default_slides"`
	MaxSlides          int  `mapstructure:"max_slides"`
	RejectEmptyOutline bool `mapstructure:"reject_empty_outline"`
	StripBold          bool `mapstructure:"strip_bold"` // drop paired ** markers
}

func (g GenerationConfig) Limits() generator.Limits {
	return generator.Limits{
		MinTextChars:  g.MinInputChars,
		MaxTextChars:  g.MaxInputChars,
		MaxToneChars:  g.MaxToneChars,
		DefaultSlides: g.DefaultSlides,
		MaxSlides:     g.MaxSlides,
	}
}

func (g GenerationConfig) Validate() error {
	if g.MinInputChars < 1 {
		return fmt.Errorf("generation.min_input_chars must be at least 1")
	}
	if g.MaxInputChars < g.MinInputChars {
		return fmt.Errorf("generation.max_input_chars must be >= min_input_chars")
	}
	if g.MaxSlides < 1 || g.DefaultSlides < 1 || g.DefaultSlides > g.MaxSlides {
		return fmt.Errorf("generation.default_slides must be within 1..max_slides")
	}
	return nil
}

type RenderConfig struct {
	Workers    int    `mapstructure:"workers"`
	FontSizing string `mapstructure:"font_sizing"` // fixed or random
}

func (r RenderConfig) Validate() error {
	if r.Workers < 1 {
		return fmt.Errorf("render.workers must be at least 1")
	}
	if _, err := render.ParseSizing(r.FontSizing, 0); err != nil {
		return fmt.Errorf("render.font_sizing: %w", err)
	}
	return nil
}

// OutputConfig controls where generated decks live and for how long.
type OutputConfig struct {
	Dir           string        `mapstructure:"dir"`
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func (o OutputConfig) Validate() error {
	if strings.TrimSpace(o.Dir) == "" {
		return fmt.Errorf("output.dir is required")
	}
	if o.Retention <= 0 || o.SweepInterval <= 0 {
		return fmt.Errorf("output.retention and output.sweep_interval must be greater than zero")
	}
	return nil
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Validate checks every section. LLM settings are not checked here: a
// missing key must leave the service up and answering 503.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.Validate(),
		c.Retry.Validate(),
		c.Generation.Validate(),
		c.Render.Validate(),
		c.Output.Validate(),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.request_timeout", 3*time.Minute)
	v.SetDefault("server.rate_limit.rps", 1.0)
	v.SetDefault("server.rate_limit.burst", 5)

	v.SetDefault("llm.provider", generator.ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.attempt_timeout", 60*time.Second)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", 5*time.Second)
	v.SetDefault("retry.max_delay", 40*time.Second)
	v.SetDefault("retry.upstream_rps", 0)
	v.SetDefault("retry.upstream_burst", 1)

	limits := generator.DefaultLimits()
	v.SetDefault("generation.min_input_chars", limits.MinTextChars)
	v.SetDefault("generation.max_input_chars", limits.MaxTextChars)
	v.SetDefault("generation.max_tone_chars", limits.MaxToneChars)
	v.SetDefault("generation.default_slides", limits.DefaultSlides)
	v.SetDefault("generation.max_slides", limits.MaxSlides)
	v.SetDefault("generation.reject_empty_outline", false)
	v.SetDefault("generation.strip_bold", false)

	v.SetDefault("render.workers", 4)
	v.SetDefault("render.font_sizing", render.SizingFixed)

	v.SetDefault("output.dir", "generated_files")
	v.SetDefault("output.retention", 10*time.Minute)
	v.SetDefault("output.sweep_interval", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads configuration. With an empty path the usual locations are
// searched for config.{json,yaml} and a missing file is fine; an explicit
// path must exist. Environment variables override the file, e.g.
// SLIDEDECK_RETRY_MAX_ATTEMPTS; OPENAI_API_KEY is accepted for llm.api_key.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exe))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
