package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	RateLimit     RateLimitConfig
	ObjectStorage ObjectStorageConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	MigrationsDir  string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	Schema          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ObjectStorageConfig points at the public bucket that hosts product images.
// An empty PublicURL disables image URL checks.
type ObjectStorageConfig struct {
	PublicURL string
	Timeout   time.Duration
}

// IsDevelopment reports whether the server runs outside production
func (c ServerConfig) IsDevelopment() bool {
	return c.Env != "production"
}

// Addr returns host:port for the redis client
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func Load() *Config {
	// Values already present in the environment win over .env
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return fromViper()
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 5)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", 60) // in seconds
	viper.SetDefault("OBJECT_STORAGE_PUBLIC_URL", "")
	viper.SetDefault("OBJECT_STORAGE_TIMEOUT", "5s")
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			MigrationsDir:  viper.GetString("MIGRATIONS_DIR"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_DATABASE"),
			Schema:          viper.GetString("DB_SCHEMA"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		},
		ObjectStorage: ObjectStorageConfig{
			PublicURL: strings.TrimRight(viper.GetString("OBJECT_STORAGE_PUBLIC_URL"), "/"),
			Timeout:   viper.GetDuration("OBJECT_STORAGE_TIMEOUT"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
