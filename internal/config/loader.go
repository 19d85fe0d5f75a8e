package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "leapchat.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "leapchat.yml"

// envPrefix is the environment variable prefix.
const envPrefix = "LEAPCHAT_"

// Load resolves configuration in precedence order: defaults, the config
// file (explicit path or discovered in the working directory), LEAPCHAT_*
// environment variables, then CLI flags. The Gemini credential additionally
// falls back to GOOGLE_API_KEY for parity with the usual Gemini tooling.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		path = findConfigFile(".")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, flagKey)
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Reasoning.APIKey == "" {
		cfg.Reasoning.APIKey = os.Getenv("GOOGLE_API_KEY")
	}

	return &cfg, nil
}

// envKey maps LEAPCHAT_* variable names onto config keys.
func envKey(s string) string {
	switch strings.TrimPrefix(s, envPrefix) {
	case "API_KEY":
		return "reasoning.api_key"
	case "MODEL":
		return "reasoning.model"
	case "TIMEOUT_SECONDS":
		return "reasoning.timeout_seconds"
	case "MAX_STEPS":
		return "sandbox.max_steps"
	case "STATE_PATH":
		return "state_path"
	case "HTTP_PORT":
		return "http_port"
	case "VERBOSE":
		return "verbose"
	}
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// flagKey maps CLI flag names onto config keys.
func flagKey(key, value string) (string, any) {
	switch key {
	case "state":
		return "state_path", value
	case "port":
		return "http_port", value
	case "model":
		return "reasoning.model", value
	case "timeout":
		return "reasoning.timeout_seconds", value
	case "verbose":
		return "verbose", value
	}
	return "", nil
}

// findConfigFile finds the config file in the given directory.
// Returns empty string if not found.
func findConfigFile(dir string) string {
	yamlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	ymlPath := filepath.Join(dir, ConfigFileNameAlt)
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath
	}
	return ""
}
