package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "gof.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestDefaults_SetsExpectedValues(t *testing.T) {
	t.Parallel()

	cfg := Defaults()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8430, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 30, cfg.Database.RetentionDays)
	assert.True(t, cfg.MCP.Enabled)
	assert.Equal(t, 2*time.Second, cfg.MCP.Debounce)

	require.Len(t, cfg.Listeners, 4)
	assert.Equal(t, "email", cfg.Listeners[0].Name)
	assert.True(t, cfg.Listeners[0].Subscribed)
	assert.Equal(t, "money", cfg.Listeners[2].Name)
	assert.False(t, cfg.Listeners[2].Subscribed)
}

func TestLoadFromFile_ParsesYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  port: 9000
  log_level: "debug"

database:
  path: "/tmp/gof-test.db"
  retention_days: 7

mcp:
  enabled: true
  debounce: 500ms

listeners:
  - name: mail
    type: email
    subscribed: true
  - name: ops-hook
    type: webhook
    url: "https://hooks.example.com/gof"
    secret: "s3cret"
    timeout: 3s
  - name: push
    type: mcp
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/tmp/gof-test.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Database.RetentionDays)
	assert.Equal(t, 500*time.Millisecond, cfg.MCP.Debounce)

	require.Len(t, cfg.Listeners, 3, "a listeners list in YAML replaces the default list")
	assert.Equal(t, ListenerConfig{Name: "mail", Type: TypeEmail, Subscribed: true}, cfg.Listeners[0])
	hook := cfg.Listeners[1]
	assert.Equal(t, TypeWebhook, hook.Type)
	assert.Equal(t, "https://hooks.example.com/gof", hook.URL)
	assert.Equal(t, "s3cret", hook.Secret)
	assert.Equal(t, 3*time.Second, hook.Timeout)
	assert.False(t, hook.Subscribed)
}

func TestLoadFromFile_ExpandsEnvVars(t *testing.T) {
	t.Setenv("GOF_TEST_SECRET", "super-secret-value")

	path := writeConfig(t, `
listeners:
  - name: hook
    type: webhook
    url: "http://127.0.0.1:9/hook"
    secret: "${GOF_TEST_SECRET}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "super-secret-value", cfg.Listeners[0].Secret)
}

func TestLoadFromFile_EnvOverridesLogLevel(t *testing.T) {
	t.Setenv("GOF_LOG_LEVEL", "warn")

	path := writeConfig(t, `
server:
  log_level: "debug"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestLoadFromFile_RejectsBindAllInterfaces(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "0.0.0.0"
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0.0.0.0")
}

func TestLoadFromFile_RejectsInvalidPort(t *testing.T) {
	t.Parallel()

	for _, port := range []string{"0", "99999"} {
		path := writeConfig(t, "server:\n  port: "+port+"\n")
		_, err := LoadFromFile(path)
		require.Error(t, err, "port %s", port)
		assert.Contains(t, err.Error(), "port")
	}
}

func TestLoadFromFile_RejectsDuplicateListenerNames(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
listeners:
  - name: a
    type: email
  - name: a
    type: money
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestLoadFromFile_RejectsUnknownListenerType(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
listeners:
  - name: pigeon
    type: carrier-pigeon
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestLoadFromFile_RejectsWebhookWithoutURL(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
listeners:
  - name: hook
    type: webhook
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")
}

func TestLoadFromFile_RejectsMCPListenerWhenMCPDisabled(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
mcp:
  enabled: false
listeners:
  - name: push
    type: mcp
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp.enabled")
}

func TestLoadFromFile_RejectsUnnamedListener(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
listeners:
  - type: email
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadFromFile_NonexistentFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8430, cfg.Server.Port)
	assert.Len(t, cfg.Listeners, 4)
}

func TestLoadFromFile_InvalidYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "{{invalid yaml:::")

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing YAML")
}

func TestLoadFromFile_PartialOverride_KeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  port: 9999
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "default host should be preserved")
	assert.Equal(t, 30, cfg.Database.RetentionDays, "default retention should be preserved")
}

func TestLoadFromFile_ExpandsDatabaseHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/gof/gof.db"), cfg.Database.Path)
}

func TestExpandHome_ReplacesLeadingTilde(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "some/path"), ExpandHome("~/some/path"))
}

func TestExpandHome_LeavesAbsolutePathsUnchanged(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/absolute/path", ExpandHome("/absolute/path"))
}
