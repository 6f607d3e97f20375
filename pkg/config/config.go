package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings holds all configuration values
type Settings struct {
	// Server configuration
	Server struct {
		URL     string
		Timeout int
	}

	// Agent configuration
	Agent struct {
		Default string
	}

	// Auth configuration
	Auth struct {
		TokenFile string
	}

	// Logging configuration
	Logging struct {
		LogFile string
		Persist bool
		Level   string
	}

	// Streaming toggles live token rendering
	Streaming bool
}

var settings *Settings

// InitializeDefaults sets up viper with default configuration values
func InitializeDefaults() {
	viper.SetDefault("server.url", "http://localhost:8000")
	viper.SetDefault("server.timeout", 30)
	viper.SetDefault("agent.default", "default")
	viper.SetDefault("auth.token_file", "token")
	viper.SetDefault("logging.log_file", "sage.log")
	viper.SetDefault("logging.persist", false)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("streaming", true)
}

// Load reads the config file (if present) and populates Settings
func Load(cfgFile string) error {
	InitializeDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		viper.AddConfigPath(filepath.Join(home, ".sage"))
		viper.SetConfigName("settings")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SAGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	return Reload()
}

// Reload rebuilds the Settings struct from the current viper state
func Reload() error {
	s := &Settings{}

	s.Server.URL = viper.GetString("server.url")
	s.Server.Timeout = viper.GetInt("server.timeout")
	s.Agent.Default = viper.GetString("agent.default")
	s.Auth.TokenFile = viper.GetString("auth.token_file")
	s.Logging.LogFile = viper.GetString("logging.log_file")
	s.Logging.Persist = viper.GetBool("logging.persist")
	s.Logging.Level = viper.GetString("logging.level")
	s.Streaming = viper.GetBool("streaming")

	settings = s
	return nil
}

// Get returns the current settings, initializing defaults if needed
func Get() *Settings {
	if settings == nil {
		InitializeDefaults()
		if err := Reload(); err != nil {
			settings = &Settings{}
		}
	}
	return settings
}
