package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                 = "8080"
	DefaultRedisURL             = "redis://localhost:6379/0"
	DefaultJWTAlgorithm         = "HS256"
	DefaultAccessTokenExpiryMin = 30
	DefaultAuthRateLimit        = 5
	DefaultAPIRateLimit         = 60
	DefaultLogLevel             = "info"
)

type Config struct {
	Env             string
	Port            string
	DBURL           string
	RedisURL        string
	SecretKey       string
	JWTAlgorithm    string
	AccessExpiryMin int
	AuthRateLimit   int
	APIRateLimit    int
	KafkaBrokers    []string
	LogLevel        string
}

// Load reads config/.env.dev or config/.env.prod depending on ENV, then
// applies real environment variables on top (godotenv never overrides an
// already-set variable). Missing required keys are fatal.
func Load() *Config {
	env := getEnv("ENV", "development")

	envFile := ".env.dev"
	if env == "production" {
		envFile = ".env.prod"
	}
	if err := godotenv.Load(fmt.Sprintf("config/%s", envFile)); err != nil {
		log.Printf("No %s file found, relying on environment variables", envFile)
	}

	return &Config{
		Env:             env,
		Port:            getEnv("PORT", DefaultPort),
		DBURL:           mustGetEnv("DB_URL"),
		RedisURL:        getEnv("REDIS_URL", DefaultRedisURL),
		SecretKey:       mustGetEnv("SECRET_KEY"),
		JWTAlgorithm:    getEnv("JWT_ALGORITHM", DefaultJWTAlgorithm),
		AccessExpiryMin: getEnvAsInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		AuthRateLimit:   getEnvAsInt("AUTH_RATE_LIMIT", DefaultAuthRateLimit),
		APIRateLimit:    getEnvAsInt("API_RATE_LIMIT", DefaultAPIRateLimit),
		KafkaBrokers:    getEnvAsSlice("KAFKA_BROKERS"),
		LogLevel:        getEnv("LOG_LEVEL", DefaultLogLevel),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func getEnvAsInt(key string, fallback int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, fallback)
		return fallback
	}
	return val
}

func getEnvAsSlice(key string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return nil
	}
	parts := strings.Split(valStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
