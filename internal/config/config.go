package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env          string
	HTTPPort     string
	LogLevel     string
	OWMAPIKey    string
	OWMBaseURL   string
	DefaultCity  string
	FetchOnStart bool
	FetchTimeout time.Duration
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string
}

// Load читает .env (если есть), затем переменные окружения.
// Уже выставленные переменные окружения .env не перезаписывает.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	timeout := getEnvInt("FETCH_TIMEOUT_SECONDS", 10)

	return &Config{
		Env:          getEnv("ENV", "development"),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		OWMAPIKey:    getEnv("OWM_API_KEY", ""),
		OWMBaseURL:   getEnv("OWM_BASE_URL", "https://api.openweathermap.org"),
		DefaultCity:  getEnv("DEFAULT_CITY", "Manila"),
		FetchOnStart: getEnvBool("FETCH_ON_START", true),
		FetchTimeout: time.Duration(timeout) * time.Second,
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "forecast_outcomes"),
		KafkaGroup:   getEnv("KAFKA_GROUP", "forecast_outcomes_group"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
