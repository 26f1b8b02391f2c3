package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	// Driver is "memory" (default) or "postgres".
	Driver string
	// Seed loads the sample catalog into an empty memory store.
	Seed bool
}

// AuthConfig holds the bearer-token verification settings.
// The key and algorithm are fixed at startup; tokens can't negotiate them.
type AuthConfig struct {
	PublicKeyPEM  string
	PublicKeyFile string
	Algorithm     string
	Issuer        string
	StrictIssuer  bool
	LeewaySec     int
	AdminRole     string
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	CORSOrigins string
	Log         LogConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Auth        AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	keycloakURL := strings.TrimRight(getEnv("KEYCLOAK_URL", "http://localhost:8080"), "/")
	realm := getEnv("KEYCLOAK_REALM", "myrealm")

	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:3001"),
		Port:        getEnv("PORT", "3001"),
		CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "memory")),
			Seed:   getEnvBool("SEED_DOCUMENTS", true),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Auth: AuthConfig{
			PublicKeyPEM:  getEnv("AUTH_PUBLIC_KEY", ""),
			PublicKeyFile: getEnv("AUTH_PUBLIC_KEY_FILE", ""),
			Algorithm:     getEnv("AUTH_ALGORITHM", "RS256"),
			Issuer:        getEnv("AUTH_ISSUER", keycloakURL+"/realms/"+realm),
			StrictIssuer:  getEnvBool("AUTH_STRICT_ISSUER", false),
			LeewaySec:     getEnvInt("AUTH_LEEWAY_SEC", 0),
			AdminRole:     getEnv("AUTH_ADMIN_ROLE", "admin"),
		},
	}
}

// PublicKey returns the PEM-encoded verification key. An inline key wins over a key file.
// Escaped newlines ("\n") in the inline form are expanded so the key fits in one env line.
func (c AuthConfig) PublicKey() ([]byte, error) {
	if c.PublicKeyPEM != "" {
		return []byte(strings.ReplaceAll(c.PublicKeyPEM, `\n`, "\n")), nil
	}
	if c.PublicKeyFile == "" {
		return nil, errors.New("auth public key is required: set AUTH_PUBLIC_KEY or AUTH_PUBLIC_KEY_FILE")
	}
	b, err := os.ReadFile(c.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read auth public key: %w", err)
	}
	return b, nil
}

// Leeway returns the clock skew tolerance applied to temporal claims.
func (c AuthConfig) Leeway() time.Duration {
	if c.LeewaySec <= 0 {
		return 0
	}
	return time.Duration(c.LeewaySec) * time.Second
}

// Location resolves the configured log timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
