package model

import "time"

// Config holds the complete citetrail configuration
type Config struct {
	Backend     BackendConfig     `yaml:"backend" mapstructure:"backend"`
	FactCheck   FactCheckConfig   `yaml:"factcheck" mapstructure:"factcheck"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// BackendConfig configures the streaming answer endpoint
type BackendConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxEventBytes int           `yaml:"max_event_bytes" mapstructure:"max_event_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // parallel questions in batch mode
}

// FactCheckConfig configures the claim verification endpoint
type FactCheckConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// LLMConfig configures the OpenAI-compatible fallback backend used when
// no answer service is available. Answers produced this way carry no
// search events and therefore no citations.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "openai" or ""
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// OutputConfig controls rendering behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Live    bool `yaml:"live" mapstructure:"live"` // redraw after every event
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:       "http://localhost:3000/beta/api/alice",
			Timeout:       2 * time.Minute,
			UserAgent:     "citetrail/0.1 (+https://github.com/ppiankov/citetrail)",
			MaxEventBytes: 64 * 1024,
		},
		FactCheck: FactCheckConfig{
			Enabled:           true,
			BaseURL:           "http://localhost:3000/beta/api/fact_check",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		LLM: LLMConfig{
			Provider: "", // Disabled by default
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{},
	}
}
