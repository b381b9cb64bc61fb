package config

import "github.com/spf13/viper"

// LLMConfig holds settings for the completion endpoint used by the
// summarize command. The endpoint is OpenAI-compatible; base_url points it
// at an internal gateway when set.
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// Config holds all runtime configuration for a ticketmap invocation.
// Values are populated from .ticketmap.yaml, TICKETMAP_* env vars, and CLI
// flags. Everything the traversal and writers need is passed down
// explicitly from here; there is no hidden package-level state.
type Config struct {
	JiraBaseURL    string    `mapstructure:"jira_base_url"`
	JiraEmail      string    `mapstructure:"jira_email"`
	JiraToken      string    `mapstructure:"jira_token"`
	RequestTimeout int       `mapstructure:"request_timeout_secs"`
	TelemetryFile  string    `mapstructure:"telemetry_file"`
	Verbose        bool      `mapstructure:"verbose"`
	LLM            LLMConfig `mapstructure:"llm"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("jira_base_url", "")
	viper.SetDefault("jira_email", "")
	viper.SetDefault("jira_token", "")
	viper.SetDefault("request_timeout_secs", 30)
	viper.SetDefault("telemetry_file", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.model", "gpt-4o-mini")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
