package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisWorkerDB int    `mapstructure:"REDIS_WORKER_DB"`

	// CalDAV calendar configuration.
	CalDAVURL      string `mapstructure:"CALDAV_URL"`
	CalDAVUsername string `mapstructure:"CALDAV_USERNAME"`
	CalDAVPassword string `mapstructure:"CALDAV_PASSWORD"`
	CalDAVPath     string `mapstructure:"CALDAV_PATH"`

	// IANA timezone applied to every scheduling request.
	CalendarTimezone string `mapstructure:"CALENDAR_TIMEZONE"`

	// Minimum free-slot length offered to the scheduler.
	MinSlotMinutes int `mapstructure:"MIN_SLOT_MINUTES"`

	// Gemini ranking model. Leave GEMINI_API_KEY empty to run with the
	// deterministic fallback only.
	GeminiAPIKey         string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel          string `mapstructure:"GEMINI_MODEL"`
	GeminiTimeoutSeconds int    `mapstructure:"GEMINI_TIMEOUT_SECONDS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "planora")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_WORKER_DB", 1)
	viper.SetDefault("CALDAV_URL", "")
	viper.SetDefault("CALDAV_USERNAME", "")
	viper.SetDefault("CALDAV_PASSWORD", "")
	viper.SetDefault("CALDAV_PATH", "")
	viper.SetDefault("CALENDAR_TIMEZONE", "UTC")
	viper.SetDefault("MIN_SLOT_MINUTES", 30)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("GEMINI_TIMEOUT_SECONDS", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
