package config

// Config holds the configuration of the application
// Use config.LoadConfig to create a new instance
type Config struct {
	NLP        NLPConfig         `mapstructure:"nlp"`
	Extraction ExtractionConfig  `mapstructure:"extraction"`
	Patterns   map[string]string `mapstructure:"patterns"`
	Server     ServerConfig      `mapstructure:"server"`
	Log        LogConfig         `mapstructure:"log"`
	Auth       AuthConfig        `mapstructure:"auth"`
}

// NLPConfig configures the span-labeling oracle. Service is either
// "http" (remote NLP server) or "local" (in-process tagger).
type NLPConfig struct {
	Service        string `mapstructure:"service"`
	ServerURL      string `mapstructure:"server_url"`
	Language       string `mapstructure:"language"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
}

type ExtractionConfig struct {
	MaxTextLength    int     `mapstructure:"max_text_length"`
	ContextWindow    int     `mapstructure:"context_window"`
	MaxBatchSize     int     `mapstructure:"max_batch_size"`
	DefaultThreshold float64 `mapstructure:"default_threshold"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	Secret   string `mapstructure:"secret"`
	Required bool   `mapstructure:"required"`
}
