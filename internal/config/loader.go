package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// searchPaths returns the ordered list of config file locations to try.
func searchPaths() []string {
	paths := []string{
		"/etc/gof/gof.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "gof", "gof.yaml"))
	}

	paths = append(paths, "gof.yaml")

	if envPath := os.Getenv("GOF_CONFIG"); envPath != "" {
		paths = append(paths, envPath)
	}

	return paths
}

// Load reads configuration from YAML files and environment variables.
// Files are loaded in order (each overrides the previous):
// /etc/gof/gof.yaml < ~/.config/gof/gof.yaml < ./gof.yaml < $GOF_CONFIG
func Load() (*Config, error) {
	cfg := Defaults()

	for _, path := range searchPaths() {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := Defaults()

	if err := loadFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than YAML config values.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("GOF_LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = level
	}
	if path := os.Getenv("GOF_DATABASE_PATH"); path != "" {
		cfg.Database.Path = path
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config search paths
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	slog.Debug("loading config file", "path", path)

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Server.Host == "0.0.0.0" {
		return fmt.Errorf("server.host must not be 0.0.0.0, gof listens on localhost only")
	}

	if cfg.Database.RetentionDays < 0 {
		return fmt.Errorf("database.retention_days must not be negative")
	}

	seen := make(map[string]bool, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		if l.Name == "" {
			return fmt.Errorf("listeners[%d].name is required", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("listeners[%d]: duplicate name %q", i, l.Name)
		}
		seen[l.Name] = true

		switch l.Type {
		case TypeEmail, TypeNotification, TypeMoney, TypeJournal:
		case TypeMCP:
			if !cfg.MCP.Enabled {
				return fmt.Errorf("listener %q: type mcp requires mcp.enabled", l.Name)
			}
		case TypeWebhook:
			if l.URL == "" {
				return fmt.Errorf("listener %q: url is required for webhook", l.Name)
			}
		default:
			return fmt.Errorf("listener %q: unknown type %q", l.Name, l.Type)
		}
	}

	cfg.Database.Path = ExpandHome(cfg.Database.Path)

	return nil
}
