// File: /config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int
	JWTSecret   string

	// Interval for the pending-request refresh poller.
	RefreshInterval time.Duration

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func Load() *Config {
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "2525"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	refreshSeconds, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "30"))

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/serenity?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     redisDB,
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),

		RefreshInterval: time.Duration(refreshSeconds) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", "sandbox.smtp.mailtrap.io"),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@serenity.app"),
		FromName:     getEnv("FROM_NAME", "Serenity"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
