package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Environment       string `mapstructure:"DLS_ENVIRONMENT"`
	ServerName        string `mapstructure:"DLS_SERVER_NAME"`
	ServerAddress     string `mapstructure:"DLS_SERVER_BIND_ADDR"`
	ServerReadTimeout int16  `mapstructure:"DLS_SERVER_READ_TIMEOUT"`
	LogFormat         string `mapstructure:"DLS_LOG_FORMAT"` // text or json
	LogLevel          string `mapstructure:"DLS_LOG_LEVEL"`  // debug, info, warn, error
	RateLimitMax      int    `mapstructure:"DLS_RATE_LIMIT_MAX"`
	RateLimitWindow   int    `mapstructure:"DLS_RATE_LIMIT_WINDOW"`

	DbHost           string `mapstructure:"DLS_DB_HOST"`
	DbPort           int16  `mapstructure:"DLS_DB_PORT"`
	DbSSLMode        string `mapstructure:"DLS_DB_SSL"`
	DbUser           string `mapstructure:"DLS_DB_USER"`
	DbPassword       string `mapstructure:"DLS_DB_PASSWORD"`
	DbDatabaseName   string `mapstructure:"DLS_DB_DATABASE"`
	DbMaxConnections int    `mapstructure:"DLS_DB_MAX_CONNECTIONS"`

	// Redis (category pagination cache)
	RedisHost string `mapstructure:"DLS_REDIS_HOST"`
	RedisPort int16  `mapstructure:"DLS_REDIS_PORT"`
	RedisDb   int    `mapstructure:"DLS_REDIS_DB"`
	RedisUser string `mapstructure:"DLS_REDIS_USER"`
	RedisPass string `mapstructure:"DLS_REDIS_PASS"`

	OtlpEndpoint   string `mapstructure:"DLS_OTLP_ENDPOINT"`
	JaegerEndpoint string `mapstructure:"DLS_JAEGER_ENDPOINT"`

	// Food database (OpenFoodFacts-compatible API)
	FoodAPIBaseURL  string `mapstructure:"DLS_FOOD_API_BASE_URL"`
	FoodAPIPageSize int    `mapstructure:"DLS_FOOD_API_PAGE_SIZE"`

	// Translation service
	TranslateServiceURL string `mapstructure:"DLS_TRANSLATE_SERVICE_URL"`
	DefaultLocale       string `mapstructure:"DLS_DEFAULT_LOCALE"`

	// Places lookup
	PlacesBaseURL      string `mapstructure:"DLS_PLACES_BASE_URL"`
	PlacesAPIKey       string `mapstructure:"DLS_PLACES_API_KEY"`
	PlacesSearchRadius int    `mapstructure:"DLS_PLACES_SEARCH_RADIUS"`
}

// DefaultConfig generates a config with sane defaults.
// See: The example .env file in the package docs for default values.
func DefaultConfig() Config {
	return Config{
		Environment:       "local",
		ServerAddress:     "0.0.0.0:3001",
		ServerReadTimeout: 60,
		LogFormat:         "text",
		LogLevel:          "info",
		RateLimitMax:      100,
		RateLimitWindow:   30,

		DbHost:           "localhost",
		DbPort:           5432,
		DbSSLMode:        "disable",
		DbUser:           "postgres",
		DbPassword:       "postgres",
		DbDatabaseName:   "dietlens",
		DbMaxConnections: 100,

		RedisHost: "localhost",
		RedisPort: 6379,
		RedisDb:   0,
		RedisUser: "redis",
		RedisPass: "redis",

		OtlpEndpoint:   "localhost:4317",
		JaegerEndpoint: "http://localhost:14268/api/traces",

		FoodAPIBaseURL:  "https://world.openfoodfacts.org",
		FoodAPIPageSize: 5,

		TranslateServiceURL: "http://localhost:5000",
		DefaultLocale:       "en",

		PlacesBaseURL:      "https://maps.googleapis.com",
		PlacesAPIKey:       "",
		PlacesSearchRadius: 1500,
	}
}

// LoadConfig will attempt to load a configuration from the default file location and fallback to environment variables.
func LoadConfig() (Config, error) {
	envFile := os.Getenv("DLS_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	var cfg Config
	var err error

	if _, err = os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		cfg, err = ConfigFromEnvironment()
	} else {
		// Load configuration
		cfg, err = ConfigFromFile(envFile)
	}

	return cfg, err
}

// ConfigFromEnvironment will look for the specified configuration from environment variables
// See package docs for a list of available environment variables.
func ConfigFromEnvironment() (config Config, err error) {
	// Set defaults
	config = DefaultConfig()
	viper.SetDefault("DLS_ENVIRONMENT", config.Environment)
	viper.SetDefault("DLS_SERVER_BIND_ADDR", config.ServerAddress)
	viper.SetDefault("DLS_SERVER_READ_TIMEOUT", config.ServerReadTimeout)
	viper.SetDefault("DLS_LOG_LEVEL", config.LogLevel)
	viper.SetDefault("DLS_LOG_FORMAT", config.LogFormat)
	viper.SetDefault("DLS_RATE_LIMIT_MAX", config.RateLimitMax)
	viper.SetDefault("DLS_RATE_LIMIT_WINDOW", config.RateLimitWindow)
	viper.SetDefault("DLS_DB_HOST", config.DbHost)
	viper.SetDefault("DLS_DB_PORT", config.DbPort)
	viper.SetDefault("DLS_DB_SSL", config.DbSSLMode)
	viper.SetDefault("DLS_DB_USER", config.DbUser)
	viper.SetDefault("DLS_DB_PASSWORD", config.DbPassword)
	viper.SetDefault("DLS_DB_DATABASE", config.DbDatabaseName)
	viper.SetDefault("DLS_DB_MAX_CONNECTIONS", config.DbMaxConnections)
	viper.SetDefault("DLS_OTLP_ENDPOINT", config.OtlpEndpoint)
	viper.SetDefault("DLS_JAEGER_ENDPOINT", config.JaegerEndpoint)
	viper.SetDefault("DLS_REDIS_HOST", config.RedisHost)
	viper.SetDefault("DLS_REDIS_PORT", config.RedisPort)
	viper.SetDefault("DLS_REDIS_USER", config.RedisUser)
	viper.SetDefault("DLS_REDIS_PASS", config.RedisPass)
	viper.SetDefault("DLS_REDIS_DB", config.RedisDb)
	viper.SetDefault("DLS_FOOD_API_BASE_URL", config.FoodAPIBaseURL)
	viper.SetDefault("DLS_FOOD_API_PAGE_SIZE", config.FoodAPIPageSize)
	viper.SetDefault("DLS_TRANSLATE_SERVICE_URL", config.TranslateServiceURL)
	viper.SetDefault("DLS_DEFAULT_LOCALE", config.DefaultLocale)
	viper.SetDefault("DLS_PLACES_BASE_URL", config.PlacesBaseURL)
	viper.SetDefault("DLS_PLACES_API_KEY", config.PlacesAPIKey)
	viper.SetDefault("DLS_PLACES_SEARCH_RADIUS", config.PlacesSearchRadius)

	// Override config values with environment variables
	viper.AutomaticEnv()
	err = viper.Unmarshal(&config)
	return
}

// ConfigFromFile will look for the specified configuration file in the current directory and initialize
// a Config from it. Values provided by environment variables will override ones found in
// the file. See package docs for a list of available environment variables.
func ConfigFromFile(f string) (config Config, err error) {
	if config, err = ConfigFromEnvironment(); err != nil {
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigFile(f)
	viper.SetConfigType("env")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)

	return
}

// Fiber initializes and returns a Fiber config based on server config values.
// See https://docs.gofiber.io/api/fiber#config
func (c Config) Fiber() fiber.Config {
	// Return Fiber configuration.
	return fiber.Config{
		ReadTimeout: time.Second * time.Duration(c.ServerReadTimeout),
	}
}

// DbConnectionString generates a connection string for the database based on config values.
func (c Config) DbConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s", c.DbUser, url.QueryEscape(c.DbPassword), c.DbHost, c.DbPort, c.DbDatabaseName, c.DbSSLMode)
}

// RedisAddress generates the host:port address for the Redis cache.
func (c Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// GetSlogLevel converts the string log level to slog.Level.
func (c Config) GetSlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo // default fallback
	}
}
