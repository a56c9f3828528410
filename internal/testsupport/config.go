package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/hwetherall/innovera-ama/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.IngestDir = filepath.Join(base, "ingest")
	cfgVal.Paths.Bind = "127.0.0.1:0"
	cfgVal.Auth.AdminPassword = "test-password"
	cfgVal.Auth.CronAPIKey = "test-cron-key"
	cfgVal.LLM.APIKey = "test"

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithSessionStore selects the admin session backend on the test config.
func WithSessionStore(kind string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.SessionStore = kind
	}
}

// WithLLMBaseURL points the gateway at a test server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithAnswerTimeout overrides the per-question generation timeout in seconds.
func WithAnswerTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.AnswerTimeoutSeconds = seconds
	}
}
