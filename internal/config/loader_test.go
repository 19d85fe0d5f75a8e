package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// clearEnv unsets every variable Load consults, restoring it afterwards.
// An empty-but-set variable would still override lower layers, so the
// variables have to be removed rather than blanked.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"LEAPCHAT_API_KEY", "LEAPCHAT_MODEL", "LEAPCHAT_TIMEOUT_SECONDS",
		"LEAPCHAT_MAX_STEPS", "LEAPCHAT_STATE_PATH", "LEAPCHAT_HTTP_PORT",
		"LEAPCHAT_VERBOSE", "GOOGLE_API_KEY",
	} {
		if old, ok := os.LookupEnv(v); ok {
			name := v
			t.Cleanup(func() { _ = os.Setenv(name, old) })
			_ = os.Unsetenv(v)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStatePath, cfg.StatePath)
	assert.Equal(t, DefaultHTTPPort, cfg.HTTPPort)
	assert.Equal(t, DefaultModel, cfg.Reasoning.Model)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Reasoning.TimeoutSeconds)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, uint64(0), cfg.Sandbox.MaxSteps)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
state_path: /tmp/leapchat-test.db
http_port: 9090
reasoning:
  api_key: file-key
  model: custom-model
  timeout_seconds: 15
sandbox:
  max_steps: 5000
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/leapchat-test.db", cfg.StatePath)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "file-key", cfg.Reasoning.APIKey)
	assert.Equal(t, "custom-model", cfg.Reasoning.Model)
	assert.Equal(t, 15, cfg.Reasoning.TimeoutSeconds)
	assert.Equal(t, uint64(5000), cfg.Sandbox.MaxSteps)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)

	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "reasoning:\n  model: file-model\n")
	t.Setenv("LEAPCHAT_MODEL", "env-model")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "env-model", cfg.Reasoning.Model)
}

func TestLoadEnvMappings(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEAPCHAT_API_KEY", "env-key")
	t.Setenv("LEAPCHAT_TIMEOUT_SECONDS", "30")
	t.Setenv("LEAPCHAT_MAX_STEPS", "12345")
	t.Setenv("LEAPCHAT_STATE_PATH", "/tmp/env-state.db")
	t.Setenv("LEAPCHAT_HTTP_PORT", "7070")
	t.Setenv("LEAPCHAT_VERBOSE", "true")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Reasoning.APIKey)
	assert.Equal(t, 30, cfg.Reasoning.TimeoutSeconds)
	assert.Equal(t, uint64(12345), cfg.Sandbox.MaxSteps)
	assert.Equal(t, "/tmp/env-state.db", cfg.StatePath)
	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.True(t, cfg.Verbose)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEAPCHAT_MODEL", "env-model")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("model", "", "")
	flags.Int("timeout", 0, "")
	flags.String("state", "", "")
	require.NoError(t, flags.Set("model", "flag-model"))
	require.NoError(t, flags.Set("timeout", "45"))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "flag-model", cfg.Reasoning.Model)
	assert.Equal(t, 45, cfg.Reasoning.TimeoutSeconds)
	assert.Equal(t, DefaultStatePath, cfg.StatePath)
}

func TestLoadGoogleAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "google-key", cfg.Reasoning.APIKey)
}

func TestLoadExplicitKeyBeatsGoogleFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("LEAPCHAT_API_KEY", "explicit-key")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "explicit-key", cfg.Reasoning.APIKey)
}

func TestTimeout(t *testing.T) {
	cfg := &Config{Reasoning: ReasoningConfig{TimeoutSeconds: 30}}

	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestRequireCredential(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.RequireCredential())

	cfg.Reasoning.APIKey = "key"
	require.NoError(t, cfg.RequireCredential())
}
