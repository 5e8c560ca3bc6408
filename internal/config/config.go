package config

import (
	"fmt"
	"os"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store     StoreConfig     `yaml:"store"`
	NATS      NATSConfig      `yaml:"nats"`
	Web       WebConfig       `yaml:"web"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Rules     RulesConfig     `yaml:"rules"`
	Reminders RemindersConfig `yaml:"reminders"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type StoreConfig struct {
	Path string `yaml:"path" env:"MARITIME_STORE_PATH"`
}

type NATSConfig struct {
	Port int `yaml:"port" env:"MARITIME_NATS_PORT"` // -1 picks a random port
}

type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port" env:"MARITIME_WEB_PORT"`
	BaseURL string `yaml:"base_url" env:"MARITIME_BASE_URL"`
}

// TelegramConfig maps platform agent ids to the Telegram chat that receives
// their notifications.
type TelegramConfig struct {
	Token string          `yaml:"token" env:"MARITIME_TELEGRAM_TOKEN"`
	Chats map[int64]int64 `yaml:"chats"`
}

type CatalogConfig struct {
	Path string `yaml:"path" env:"MARITIME_CATALOG_PATH"` // empty uses the embedded catalog
}

// RulesConfig holds the decision-tree knobs that the legal source leaves open.
type RulesConfig struct {
	// ArrestBarAnswer is the answer to the "could have arrested the defendant
	// vessel" question that makes the two-year time bar apply.
	ArrestBarAnswer string `yaml:"arrest_bar_answer" env:"MARITIME_ARREST_BAR_ANSWER"`
}

type RemindersConfig struct {
	Schedule string `yaml:"schedule" env:"MARITIME_REMINDER_SCHEDULE"` // cron expression, empty disables
}

// TracingConfig enables OpenTelemetry export. An empty endpoint disables it.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint" env:"MARITIME_OTEL_ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"MARITIME_OTEL_SERVICE_NAME"`
}

func defaults() Config {
	return Config{
		Store: StoreConfig{
			Path: "data/maritime.db",
		},
		NATS: NATSConfig{
			Port: 4222,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    8080,
		},
		Rules: RulesConfig{
			ArrestBarAnswer: "yes",
		},
		Tracing: TracingConfig{
			ServiceName: "maritime-collision",
		},
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("MARITIME_CONFIG")
	if path == "" {
		path = "config/maritime.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults + env
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variables override the file
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Rules.ArrestBarAnswer {
	case "yes", "no":
	default:
		return fmt.Errorf("rules.arrest_bar_answer must be \"yes\" or \"no\", got %q", c.Rules.ArrestBarAnswer)
	}
	if c.Reminders.Schedule != "" && !gronx.New().IsValid(c.Reminders.Schedule) {
		return fmt.Errorf("invalid reminders.schedule: %s", c.Reminders.Schedule)
	}
	return nil
}
