// Package config loads shirokuma's runtime configuration: the
// Markdown/SQLite data root, the export root, and the environment
// profile name. It is an ambient concern left to the collaborator
// layer, but is still built as a viper singleton with a precedence
// walk across project, user-config, and home directories, overridable
// by environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	envDataRoot   = "SHIROKUMA_DATA_ROOT"
	envExportRoot = "SHIROKUMA_EXPORT_ROOT"
	envProfile    = "SHIROKUMA_ENV"
	envLogFile    = "SHIROKUMA_LOG_FILE"
)

// Config is the resolved, immutable configuration for one process.
type Config struct {
	DataRoot   string
	ExportRoot string
	Profile    string
	LogFile    string
	// DatabasePath is the single index DB file, always nested under
	// DataRoot, the single index DB file living anywhere under root.
	DatabasePath string
}

var v *viper.Viper

// Load resolves configuration following (highest precedence first):
//  1. explicit environment variables
//  2. project-local .shirokuma/config.yaml, found by walking up from cwd
//  3. user config dir (os.UserConfigDir()/shirokuma/config.yaml)
//  4. ~/.shirokuma/config.yaml
//  5. built-in defaults (~/.shirokuma as data root)
func Load() (*Config, error) {
	v = viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("config")

	v.SetDefault("data_root", defaultDataRoot())
	v.SetDefault("export_root", "")
	v.SetDefault("profile", "default")
	v.SetDefault("log_file", "")

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
	} else if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "shirokuma", "config.yaml")
		if _, statErr := os.Stat(candidate); statErr == nil {
			v.SetConfigFile(candidate)
		}
	}
	if v.ConfigFileUsed() == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".shirokuma", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				v.SetConfigFile(candidate)
			}
		}
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if val := os.Getenv(envDataRoot); val != "" {
		v.Set("data_root", val)
	}
	if val := os.Getenv(envExportRoot); val != "" {
		v.Set("export_root", val)
	}
	if val := os.Getenv(envProfile); val != "" {
		v.Set("profile", val)
	}
	if val := os.Getenv(envLogFile); val != "" {
		v.Set("log_file", val)
	}

	dataRoot := v.GetString("data_root")
	absDataRoot, err := filepath.Abs(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("config: resolving data root %q: %w", dataRoot, err)
	}

	cfg := &Config{
		DataRoot:     absDataRoot,
		ExportRoot:   v.GetString("export_root"),
		Profile:      v.GetString("profile"),
		LogFile:      v.GetString("log_file"),
		DatabasePath: filepath.Join(absDataRoot, ".system", "index.db"),
	}
	return cfg, nil
}

func defaultDataRoot() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".shirokuma")
	}
	return ".shirokuma"
}

// findProjectConfig walks up from the current working directory
// looking for .shirokuma/config.yaml, so commands work from any
// subdirectory of a project.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for dir := cwd; ; {
		candidate := filepath.Join(dir, ".shirokuma", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Set persists a single key to the active config file, creating
// ~/.shirokuma/config.yaml if none was found during Load. Exposed for the
// `shirokuma config set` CLI command.
func Set(key, value string) error {
	if v == nil {
		return fmt.Errorf("config: not loaded")
	}
	v.Set(key, value)
	path := v.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("config: resolving home dir: %w", err)
		}
		path = filepath.Join(home, ".shirokuma", "config.yaml")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("config: creating config dir: %w", err)
		}
		v.SetConfigFile(path)
	}
	return v.WriteConfig()
}

// Get returns a single resolved key for the `shirokuma config get` CLI command.
func Get(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// All returns every resolved key for `shirokuma config list`.
func All() map[string]any {
	if v == nil {
		return nil
	}
	return v.AllSettings()
}
