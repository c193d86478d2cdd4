package config

import "time"

// Listener types understood by the catalog.
const (
	TypeEmail        = "email"
	TypeNotification = "notification"
	TypeMoney        = "money"
	TypeWebhook      = "webhook"
	TypeJournal      = "journal"
	TypeMCP          = "mcp"
)

// Config is the root configuration for gof.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	MCP       MCPConfig        `yaml:"mcp"`
	Listeners []ListenerConfig `yaml:"listeners"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

type DatabaseConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type MCPConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// ListenerConfig declares one named listener. Subscribed listeners are
// registered on the hub at startup; the others can be subscribed later.
type ListenerConfig struct {
	Name       string        `yaml:"name"`
	Type       string        `yaml:"type"`
	Subscribed bool          `yaml:"subscribed"`
	URL        string        `yaml:"url"`     // webhook only
	Secret     string        `yaml:"secret"`  // webhook only
	Timeout    time.Duration `yaml:"timeout"` // webhook only
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8430,
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Path:          "~/.config/gof/gof.db",
			RetentionDays: 30,
		},
		MCP: MCPConfig{
			Enabled:  true,
			Debounce: 2 * time.Second,
		},
		Listeners: []ListenerConfig{
			{Name: "email", Type: TypeEmail, Subscribed: true},
			{Name: "notification", Type: TypeNotification, Subscribed: true},
			{Name: "money", Type: TypeMoney},
			{Name: "journal", Type: TypeJournal},
		},
	}
}
