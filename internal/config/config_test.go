package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Paths.Bind != defaultBind {
		t.Fatalf("expected default bind, got %q", cfg.Paths.Bind)
	}
	if cfg.LLM.AnswerTimeoutSeconds != defaultAnswerTimeout {
		t.Fatalf("expected default answer timeout, got %d", cfg.LLM.AnswerTimeoutSeconds)
	}
	if cfg.Auth.SessionStore != "memory" {
		t.Fatalf("expected memory session store, got %q", cfg.Auth.SessionStore)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"
bind = "0.0.0.0:9999"

[auth]
admin_password = "hunter2"
session_store = "database"

[llm]
api_key = "sk-test"
model = "openai/gpt-4.1-mini"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Paths.Bind != "0.0.0.0:9999" {
		t.Fatalf("bind override not applied: %q", cfg.Paths.Bind)
	}
	if cfg.Auth.SessionStore != "database" {
		t.Fatalf("session store override not applied: %q", cfg.Auth.SessionStore)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "ama.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadFallsBackToAPIKeyEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-from-env")
	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Fatalf("expected env api key, got %q", cfg.LLM.APIKey)
	}
}

func TestValidateRejectsBadSessionStore(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	cfg.Auth.SessionStore = "redis"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "session_store") {
		t.Fatalf("expected session_store validation error, got %v", err)
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected logging.format validation error")
	}
}
