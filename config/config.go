package config

import (
	"strings"

	"github.com/lexanon/lexanon/internal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// We're bootstrapping so avoid any imports from other packages
var log = logrus.New()

// LoadConfig loads the config file and ENV variables into a Config struct
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LEXANON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Warn("config file not found, using defaults and ENV")
	}

	// Environment variables take precedence over config file
	loadDotEnv()

	err := viper.BindEnv("auth.secret", "LEXANON_AUTH_SECRET")
	if err != nil {
		log.Fatalf("Error binding environment variable: %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("nlp.service", "local")
	viper.SetDefault("nlp.language", "fr")
	viper.SetDefault("nlp.timeout_seconds", 30)
	viper.SetDefault("nlp.max_attempts", 3)
	viper.SetDefault("extraction.max_text_length", 1000000)
	viper.SetDefault("extraction.context_window", 50)
	viper.SetDefault("extraction.max_batch_size", 10)
	viper.SetDefault("extraction.default_threshold", 0.5)
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Warn(".env file not found or unable to load")
	}
}

// SetLogLevel sets the log level based on the config file. Defaults to INFO if not set or invalid
func SetLogLevel(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	internal.SetLogLevel(level)
	log.Info("Log level set to: ", level)
}
