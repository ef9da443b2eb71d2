package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// MaxPages bounds pagination per site source.
	MaxPages int
	// Concurrency caps the broker worker pool; 0 means one worker per broker.
	Concurrency int
	MaxRetries  int

	// FilteringEnabled turns on the price ceiling below. Listings priced
	// above MaxPrice are dropped before reconciliation; price 0 (unknown)
	// always passes.
	FilteringEnabled bool
	MaxPrice         int

	AgenciesPath string

	SMTPHost       string
	SMTPPort       string
	SenderEmail    string
	SenderPassword string
	Recipients     []string

	Verbose bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "huurhuis_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxPages:    getEnvInt("MAX_PAGES", 5),
		Concurrency: getEnvInt("MAX_CONCURRENCY", 0),
		MaxRetries:  getEnvInt("MAX_RETRIES", 3),

		FilteringEnabled: getEnvBool("FILTERING_ENABLED", false),
		MaxPrice:         getEnvInt("MAX_PRICE", 0),

		AgenciesPath: getEnv("AGENCIES_PATH", "./agencies.yaml"),

		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderPassword: getEnv("SENDER_PASSWORD", ""),
		Recipients:     splitList(getEnv("RECIPIENTS", "")),

		Verbose: getEnvBool("VERBOSE", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
