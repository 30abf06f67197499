package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env    string `yaml:"env" validate:"oneof=development production"`
	Server struct {
		Port string `yaml:"port" validate:"omitempty,numeric"`
	} `yaml:"server"`
	Storage struct {
		Backend    string `yaml:"backend" validate:"oneof=memory sqlite redis"`
		Namespace  string `yaml:"namespace"`
		SQLitePath string `yaml:"sqlite_path" validate:"required_if=Backend sqlite"`
	} `yaml:"storage"`
	Redis struct {
		Addr       string `yaml:"addr" validate:"omitempty,hostname_port"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db" validate:"min=0,max=15"`
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" validate:"omitempty,url"`
	} `yaml:"postgres"`
	Seed struct {
		Source   string `yaml:"source" validate:"oneof=embedded http postgres"`
		BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
		Timeout  string `yaml:"timeout"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"seed"`
	Quiz struct {
		SecondsPerQuestion int `yaml:"seconds_per_question" validate:"min=0,max=600"`
	} `yaml:"quiz"`
	Analytics struct {
		Timezone string `yaml:"timezone" validate:"omitempty,timezone"`
	} `yaml:"analytics"`
}

var validate = validator.New()

// Load reads YAML config from path, applies environment overrides and defaults,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"APP_ENV":         &c.Env,
		"STORAGE_BACKEND": &c.Storage.Backend,
		"SQLITE_PATH":     &c.Storage.SQLitePath,
		"REDIS_ADDR":      &c.Redis.Addr,
		"REDIS_PASSWORD":  &c.Redis.Password,
		"POSTGRES_URL":    &c.Postgres.URL,
		"SEED_SOURCE":     &c.Seed.Source,
		"SEED_BASE_URL":   &c.Seed.BaseURL,
		"ANALYTICS_TZ":    &c.Analytics.Timezone,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("QUIZ_SECONDS_PER_QUESTION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QUIZ_SECONDS_PER_QUESTION: %w", err)
		}
		c.Quiz.SecondsPerQuestion = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.Namespace == "" {
		c.Storage.Namespace = "ll_"
	}
	if c.Seed.Source == "" {
		c.Seed.Source = "embedded"
	}
}

// Validate checks field rules plus the rules that span sections.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Storage.Backend == "redis" && c.Redis.Addr == "" {
		return errors.New("invalid config: storage.backend redis needs redis.addr")
	}
	if c.Seed.Source == "http" && c.Seed.BaseURL == "" {
		return errors.New("invalid config: seed.source http needs seed.base_url")
	}
	if c.Seed.Source == "postgres" && c.Postgres.URL == "" {
		return errors.New("invalid config: seed.source postgres needs postgres.url")
	}
	return nil
}

// QuestionLimit is the per-question countdown; zero means the built-in default.
func (c Config) QuestionLimit() time.Duration {
	return time.Duration(c.Quiz.SecondsPerQuestion) * time.Second
}

// Location resolves analytics.timezone; empty means the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Analytics.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Analytics.Timezone)
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
