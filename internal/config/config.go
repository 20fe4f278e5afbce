package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultAPIBaseURL = "https://api.github.com"

// Config carries everything the process needs from the environment.
// The GitHub token is server-side state only: it must never be written
// to logs, responses or any client-delivered artifact.
type Config struct {
	GitHubOwner   string
	GitHubRepo    string
	GitHubToken   string
	GitHubBranch  string
	GitHubAPIBase string

	HTTPPort string
	Debug    bool

	// Read-modify-write attempts per domain operation. 1 reproduces
	// the fail-fast reference behavior, >1 enables retry-with-refetch.
	WriteMaxAttempts int

	KafkaBrokers []string
	KafkaTopic   string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
}

func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			return
		}
	}
	// No .env file; the process environment alone is fine.
}

// Load reads configuration from a .env file if one is present, then
// from the process environment.
func Load() (*Config, error) {
	loadEnv()

	cfg := &Config{
		GitHubOwner:      os.Getenv("GITHUB_OWNER"),
		GitHubRepo:       os.Getenv("GITHUB_REPO"),
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		GitHubBranch:     getenvDefault("GITHUB_BRANCH", "main"),
		GitHubAPIBase:    getenvDefault("GITHUB_API_BASE", defaultAPIBaseURL),
		HTTPPort:         getenvDefault("HTTP_PORT", "9000"),
		Debug:            os.Getenv("DEBUG") == "true",
		WriteMaxAttempts: getenvInt("WRITE_MAX_ATTEMPTS", 3),
		KafkaTopic:       getenvDefault("KAFKA_TOPIC", "domain_events"),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           getenvInt("DB_PORT", 5432),
		DBUser:           os.Getenv("POSTGRES_USER"),
		DBPassword:       os.Getenv("POSTGRES_PASSWORD"),
		DBName:           os.Getenv("POSTGRES_DB"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.GitHubOwner == "" || cfg.GitHubRepo == "" {
		return nil, fmt.Errorf("GITHUB_OWNER and GITHUB_REPO must be set")
	}
	if cfg.GitHubToken == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN must be set")
	}
	if cfg.WriteMaxAttempts < 1 {
		return nil, fmt.Errorf("WRITE_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

// OutboxEnabled reports whether the Postgres event outbox is configured.
func (c *Config) OutboxEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

// DatabaseDSN builds the Postgres connection string for the outbox.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
