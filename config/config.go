package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"sola-donation-api/database"
	"sola-donation-api/services/email"
)

type Config struct {
	Database database.DatabaseConfig
	SMTP     email.SMTPConfig
	Server   ServerConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port          string
	SessionSecret string
}

type RedisConfig struct {
	URL               string
	WorkerConcurrency int
}

type AuthConfig struct {
	JWTSecret     string
	AdminUsername string
	AdminPassHash string // hex-encoded SHA-256 of the admin password
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	workerConcurrency := 2

	cfg := &Config{
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		SMTP: email.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Server: ServerConfig{
			Port:          os.Getenv("SERVER_PORT"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
		},
		Redis: RedisConfig{
			URL:               os.Getenv("REDIS_URL"),
			WorkerConcurrency: workerConcurrency,
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
		log.Printf("Warning: REDIS_URL not set, using default: %s", cfg.Redis.URL)
	}

	// Gateway keys are not read here; they live in the settings table so the
	// admin can switch sandbox/production without a restart.

	return cfg
}
