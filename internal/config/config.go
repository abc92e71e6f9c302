package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath   string
	Port           string
	Env            string
	AllowedOrigins string
	LogLevel       string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	MailgunAPIKey      string
	MailgunDomain      string
	MailgunSenderEmail string
	MailgunSenderName  string

	RequestTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DatabasePath:   getEnv("DATABASE_PATH", "data/festarent.db"),
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "production"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),

		AdminName:     getEnv("ADMIN_NAME", "Administrador"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@festarent.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "no-reply@festarent.local"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "FestaRent"),

		RequestTimeout: 10 * time.Second,
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
