package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Storage struct {
		Driver string // "file", "sqlite" or "memory"
		Dir    string // article directory for the file driver
		DSN    string // sqlite DSN: "memory" or a file path
	}
	Uploads struct {
		Dir        string
		BasePath   string `mapstructure:"base_path"` // public URL prefix for stored media
		MaxImageMB int64  `mapstructure:"max_image_mb"`
		MaxVideoMB int64  `mapstructure:"max_video_mb"`
	}
	RecentLimit int  `mapstructure:"recent_limit"`
	SeedData    bool `mapstructure:"seed_data"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from .env, config file and environment
// variables, in that order of increasing precedence.
func LoadConfig() {
	// A local .env is optional; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Println("INFO: [Config] Loaded environment variables from .env file.")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../config") // for running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.dir", "data/articles")
	viper.SetDefault("storage.dsn", "data/wiki.db")
	viper.SetDefault("uploads.dir", "data/uploads")
	viper.SetDefault("uploads.base_path", "/uploads")
	viper.SetDefault("uploads.max_image_mb", 10)
	viper.SetDefault("uploads.max_video_mb", 25)
	viper.SetDefault("recent_limit", 5)
	viper.SetDefault("seed_data", true)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		AppConfig.Storage.Driver = driver
		log.Printf("INFO: [Config] Storage driver overridden by environment variable STORAGE_DRIVER: %s", driver)
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		AppConfig.Storage.Dir = dir
		log.Printf("INFO: [Config] Storage directory overridden by environment variable STORAGE_DIR: %s", dir)
	}

	switch AppConfig.Storage.Driver {
	case "file", "sqlite", "memory":
		// known drivers
	default:
		log.Fatalf("FATAL: [Config] Unknown storage driver %q. Expected \"file\", \"sqlite\" or \"memory\".", AppConfig.Storage.Driver)
	}

	log.Printf("INFO: [Config] Configuration loading complete (driver=%s, port=%s).",
		AppConfig.Storage.Driver, AppConfig.Server.Port)
}
