package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"cipher-chat/internal/cipher"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It follows the 12-factor app methodology by prioritizing environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Chat     ChatConfig
}

type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret  string
	CookieName string
}

type StorageConfig struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	ACL        string
}

// ChatConfig groups the message pipeline knobs.
type ChatConfig struct {
	Shift             int
	MaxImageBytes     int64
	MessageRateLimit  int
	MessageRateWindow time.Duration
	UserCacheTTL      time.Duration
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Environment:     getEnv("APP_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "cipher_chat"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "change-me"),
			CookieName: getEnv("JWT_COOKIE_NAME", "jwt"),
		},
		Storage: StorageConfig{
			Region:     getEnv("S3_REGION", ""),
			Bucket:     getEnv("S3_BUCKET", ""),
			AccessKey:  getEnv("S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("S3_SECRET_KEY", ""),
			Endpoint:   getEnv("S3_ENDPOINT", ""),
			PublicBase: getEnv("S3_PUBLIC_BASE", ""),
			ACL:        getEnv("S3_ACL", ""),
		},
		Chat: ChatConfig{
			Shift:             getEnvAsInt("MESSAGE_SHIFT", cipher.DefaultShift),
			MaxImageBytes:     int64(getEnvAsInt("MAX_IMAGE_BYTES", 5<<20)),
			MessageRateLimit:  getEnvAsInt("MESSAGE_RATE_LIMIT", 60),
			MessageRateWindow: getEnvAsDuration("MESSAGE_RATE_WINDOW", time.Minute),
			UserCacheTTL:      getEnvAsDuration("USER_CACHE_TTL", time.Minute),
		},
	}, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// StorageEnabled reports whether enough S3 settings are present to host images.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Region != "" && c.Storage.Bucket != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
