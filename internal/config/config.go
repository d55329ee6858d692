package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseDriver string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	SecretKey      string        `mapstructure:"SECRET_KEY"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure   bool          `mapstructure:"COOKIE_SECURE"`

	TMDBAPIKey       string `mapstructure:"TMDB_API_KEY"`
	TMDBBaseURL      string `mapstructure:"TMDB_BASE_URL"`
	TMDBLanguage     string `mapstructure:"TMDB_LANGUAGE"`
	TMDBImageBaseURL string `mapstructure:"TMDB_IMAGE_BASE_URL"`

	InitialUsers string `mapstructure:"INITIAL_USERS"`

	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	GinMode    string `mapstructure:"GIN_MODE"`
}

var AppConfig *Config

// SetDefaults registers the fallback value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "data/filme.db")
	v.SetDefault("SECRET_KEY", "dev-secret-key-change-in-production")
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("TMDB_API_KEY", "")
	v.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("TMDB_LANGUAGE", "de-DE")
	v.SetDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("INITIAL_USERS", "")
	v.SetDefault("LISTEN_ADDR", ":5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GIN_MODE", "release")
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	v := viper.GetViper()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	SetDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	cfg, err := Decode(v)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	AppConfig = cfg
}

// Decode unmarshals v into a fresh Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
