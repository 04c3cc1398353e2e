package config

import "os"

type Config struct {
	Port           string
	DatabaseURL    string
	RedisURL       string
	LogLevel       string
	Environment    string
	CORSOrigins    string
	ReportEndpoint string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		ReportEndpoint: getEnv("REPORT_ENDPOINT", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
