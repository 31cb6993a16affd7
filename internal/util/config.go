package util

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	AdminDeliveryToken = "token"
	AdminDeliveryTopic = "topic"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	HTTPServerAddress            string `mapstructure:"HTTP_SERVER_ADDRESS"`
	FirebaseProjectID            string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	AdminDeliveryMode            string `mapstructure:"ADMIN_DELIVERY_MODE"`
	UsersCollection              string `mapstructure:"USERS_COLLECTION"`
	LogFormat                    string `mapstructure:"LOG_FORMAT"`
	TitleMaxLength               int    `mapstructure:"TITLE_MAX_LENGTH"`
	MaxConcurrentSends           int    `mapstructure:"MAX_CONCURRENT_SENDS"`
	MaxRequestBodyBytes          int64  `mapstructure:"MAX_REQUEST_BODY_BYTES"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: on Cloud Run everything comes from the environment.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal
	v.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("ADMIN_DELIVERY_MODE", AdminDeliveryToken)
	v.SetDefault("USERS_COLLECTION", "users")
	v.SetDefault("LOG_FORMAT", LogFormatConsole)
	v.SetDefault("TITLE_MAX_LENGTH", 100)
	v.SetDefault("MAX_CONCURRENT_SENDS", 0)
	v.SetDefault("MAX_REQUEST_BODY_BYTES", 3<<20)

	// Prefer environment variables over config file
	v.AutomaticEnv()

	// Load config file
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err = v.ReadInConfig(); err != nil {
				return
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			err = statErr
			return
		}
	}

	// Unmarshal config into struct
	err = v.UnmarshalExact(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if config.HTTPServerAddress == "" {
		return fmt.Errorf("HTTP_SERVER_ADDRESS is required")
	}
	if config.UsersCollection == "" {
		return fmt.Errorf("USERS_COLLECTION is required")
	}
	switch config.AdminDeliveryMode {
	case AdminDeliveryToken, AdminDeliveryTopic:
	default:
		return fmt.Errorf("ADMIN_DELIVERY_MODE must be %q or %q, got %q", AdminDeliveryToken, AdminDeliveryTopic, config.AdminDeliveryMode)
	}
	switch config.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, config.LogFormat)
	}
	if config.TitleMaxLength < 0 {
		return fmt.Errorf("TITLE_MAX_LENGTH must not be negative")
	}
	if config.MaxConcurrentSends < 0 {
		return fmt.Errorf("MAX_CONCURRENT_SENDS must not be negative")
	}
	if config.MaxRequestBodyBytes < 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must not be negative")
	}

	return nil
}
