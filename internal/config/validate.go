package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration values for consistency. It does not touch the
// filesystem; EnsureDirectories handles directory creation separately.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir is required")
	}
	if strings.TrimSpace(c.Paths.Bind) == "" {
		problems = append(problems, "paths.bind is required")
	}

	switch c.Auth.SessionStore {
	case "memory", "database":
	default:
		problems = append(problems, fmt.Sprintf("auth.session_store: unsupported value %q (use memory or database)", c.Auth.SessionStore))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
