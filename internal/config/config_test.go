package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.Store.Path != "data/maritime.db" {
		t.Errorf("expected store path data/maritime.db, got %s", cfg.Store.Path)
	}
	if cfg.NATS.Port != 4222 {
		t.Errorf("expected nats port 4222, got %d", cfg.NATS.Port)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected web port 8080, got %d", cfg.Web.Port)
	}
	if !cfg.Web.Enabled {
		t.Error("expected web enabled by default")
	}
	if cfg.Rules.ArrestBarAnswer != "yes" {
		t.Errorf("expected arrest bar answer yes, got %s", cfg.Rules.ArrestBarAnswer)
	}
	if cfg.Catalog.Path != "" {
		t.Errorf("expected embedded catalog by default, got %s", cfg.Catalog.Path)
	}
	if cfg.Tracing.Endpoint != "" || cfg.Tracing.ServiceName != "maritime-collision" {
		t.Errorf("expected tracing disabled with default service name, got %+v", cfg.Tracing)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MARITIME_CONFIG", "/nonexistent/config.yaml")
	t.Setenv("MARITIME_TELEGRAM_TOKEN", "test-token-123")
	t.Setenv("MARITIME_WEB_PORT", "9090")
	t.Setenv("MARITIME_STORE_PATH", "/tmp/m.db")
	t.Setenv("MARITIME_ARREST_BAR_ANSWER", "no")
	t.Setenv("MARITIME_REMINDER_SCHEDULE", "0 9 * * *")
	t.Setenv("MARITIME_NATS_PORT", "-1")
	t.Setenv("MARITIME_OTEL_ENDPOINT", "http://collector:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Telegram.Token != "test-token-123" {
		t.Errorf("expected telegram token test-token-123, got %s", cfg.Telegram.Token)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("expected web port 9090, got %d", cfg.Web.Port)
	}
	if cfg.Store.Path != "/tmp/m.db" {
		t.Errorf("expected store path /tmp/m.db, got %s", cfg.Store.Path)
	}
	if cfg.Rules.ArrestBarAnswer != "no" {
		t.Errorf("expected arrest bar answer no, got %s", cfg.Rules.ArrestBarAnswer)
	}
	if cfg.Reminders.Schedule != "0 9 * * *" {
		t.Errorf("expected reminder schedule, got %q", cfg.Reminders.Schedule)
	}
	if cfg.NATS.Port != -1 {
		t.Errorf("expected nats port -1, got %d", cfg.NATS.Port)
	}
	if cfg.Tracing.Endpoint != "http://collector:4318" {
		t.Errorf("unexpected tracing endpoint %q", cfg.Tracing.Endpoint)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
store:
  path: "/var/lib/maritime.db"
web:
  port: 3000
  enabled: false
  base_url: "https://resolve.example"
telegram:
  token: "yaml-token"
  chats:
    7: 1001
    8: 1002
catalog:
  path: "/etc/maritime/questions.json"
rules:
  arrest_bar_answer: "no"
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MARITIME_CONFIG", cfgPath)
	t.Setenv("MARITIME_TELEGRAM_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Telegram.Token != "yaml-token" {
		t.Errorf("expected yaml-token, got %s", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.Chats) != 2 || cfg.Telegram.Chats[8] != 1002 {
		t.Errorf("unexpected chats: %v", cfg.Telegram.Chats)
	}
	if cfg.Web.Port != 3000 {
		t.Errorf("expected web port 3000, got %d", cfg.Web.Port)
	}
	if cfg.Web.Enabled {
		t.Error("expected web disabled")
	}
	if cfg.Web.BaseURL != "https://resolve.example" {
		t.Errorf("unexpected base url %s", cfg.Web.BaseURL)
	}
	if cfg.Catalog.Path != "/etc/maritime/questions.json" {
		t.Errorf("unexpected catalog path %s", cfg.Catalog.Path)
	}
	if cfg.Rules.ArrestBarAnswer != "no" {
		t.Errorf("expected arrest bar answer no, got %s", cfg.Rules.ArrestBarAnswer)
	}
	// Untouched sections keep their defaults
	if cfg.NATS.Port != 4222 {
		t.Errorf("expected default nats port, got %d", cfg.NATS.Port)
	}
}

func TestLoadRejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"arrest answer", map[string]string{"MARITIME_ARREST_BAR_ANSWER": "maybe"}},
		{"reminder cron", map[string]string{"MARITIME_REMINDER_SCHEDULE": "not a cron"}},
		{"web port", map[string]string{"MARITIME_WEB_PORT": "eighty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MARITIME_CONFIG", "/nonexistent/config.yaml")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
