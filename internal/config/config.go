// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hummingbird-fin/hbctl/internal/common"
)

// Dir returns the hbctl configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hbctl"), nil
}

// StorePath returns the local store database path, honoring the
// store.path override.
func StorePath() (string, error) {
	if custom := viper.GetString("store.path"); custom != "" {
		return ExpandPath(custom), nil
	}

	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "local.db"), nil
}

// SessionPath returns the file holding the hb_session cookie value.
func SessionPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session"), nil
}

// SetDefaults installs the baseline configuration.
func SetDefaults() {
	viper.SetDefault("api.base_url", "https://app.hummingbird.example/api")
	viper.SetDefault("otp.collector", "prompt") // prompt | form
	viper.SetDefault("otp.simulate", false)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// Validate checks the effective configuration after defaults, file, env,
// and flags have all been merged.
func Validate() error {
	base := viper.GetString("api.base_url")
	if base == "" {
		return fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an absolute URL", common.ErrInvalidConfig, base)
	}

	switch collector := viper.GetString("otp.collector"); collector {
	case "prompt", "form":
	default:
		return fmt.Errorf("%w: otp.collector %q (use prompt or form)", common.ErrInvalidConfig, collector)
	}

	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
