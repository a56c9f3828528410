package config

const (
	defaultBind            = "127.0.0.1:8480"
	defaultLLMBaseURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel        = "openai/gpt-4.1-mini"
	defaultAnswerTimeout   = 45
	defaultSessionTTLHours = 8
	defaultSessionStore    = "memory"
)

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/ama",
			LogDir:  "~/.local/share/ama/logs",
			Bind:    defaultBind,
		},
		Auth: Auth{
			SessionTTLHours: defaultSessionTTLHours,
			SessionStore:    defaultSessionStore,
		},
		LLM: LLM{
			BaseURL:              defaultLLMBaseURL,
			Model:                defaultLLMModel,
			AnswerTimeoutSeconds: defaultAnswerTimeout,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
