package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Facebook FacebookConfig
	Admin    AdminConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	SessionEncryptionKey string
}

// FacebookConfig holds ad-platform credentials and webhook settings.
// AllowUnsignedWebhooks disables signature verification and must stay off
// outside local debugging.
type FacebookConfig struct {
	AppSecret             string
	VerifyToken           string
	PageToken             string
	SystemUserToken       string
	ConversionsToken      string
	PixelID               string
	TestEventCode         string
	DefaultAdAccountID    string
	AllowUnsignedWebhooks bool
}

// AdminConfig holds the email lists that drive role derivation at signup
type AdminConfig struct {
	AdminEmails      []string
	SuperAdminEmails []string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "leadflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		Facebook: FacebookConfig{
			AppSecret:             getEnv("FACEBOOK_APP_SECRET", ""),
			VerifyToken:           getEnv("FACEBOOK_VERIFY_TOKEN", ""),
			PageToken:             getEnv("FACEBOOK_PAGE_ACCESS_TOKEN", ""),
			SystemUserToken:       getEnv("FACEBOOK_SYSTEM_USER_TOKEN", ""),
			ConversionsToken:      getEnv("FACEBOOK_CONVERSIONS_TOKEN", ""),
			PixelID:               getEnv("FACEBOOK_PIXEL_ID", ""),
			TestEventCode:         getEnv("FACEBOOK_TEST_EVENT_CODE", ""),
			DefaultAdAccountID:    getEnv("FACEBOOK_DEFAULT_AD_ACCOUNT_ID", ""),
			AllowUnsignedWebhooks: getEnvAsBool("FACEBOOK_ALLOW_UNSIGNED_WEBHOOKS", false),
		},
		Admin: AdminConfig{
			AdminEmails:      getEnvAsList("ADMIN_EMAILS"),
			SuperAdminEmails: getEnvAsList("SUPER_ADMIN_EMAILS"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
