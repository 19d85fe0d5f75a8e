package config

// Default configuration values.
const (
	DefaultStatePath      = ".leapchat/state.db"
	DefaultHTTPPort       = 8080
	DefaultModel          = "gemini-1.5-pro-latest"
	DefaultTimeoutSeconds = 60
)

// defaults is the base configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"state_path":                DefaultStatePath,
		"http_port":                 DefaultHTTPPort,
		"verbose":                   false,
		"reasoning.model":           DefaultModel,
		"reasoning.timeout_seconds": DefaultTimeoutSeconds,
	}
}
