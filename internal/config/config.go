package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the API process
type Config struct {
	Port     string
	GinMode  string
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     []string
	SMTP     SMTPConfig
	AMQP     AMQPConfig
	ViaCEP   string
	// Base URL used to build the "view quote" link inside emails
	QuoteLinkBase string
}

type DatabaseConfig struct {
	URL        string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	LogQueries bool
}

type AuthConfig struct {
	JWTSecret   string
	Issuer      string
	OwnerOpenID string
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

// Load reads configs/.env (or .env) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using process environment")
		}
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		Database: DatabaseConfig{
			URL:        os.Getenv("DATABASE_URL"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			Name:       getEnv("DB_NAME", "crm"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			LogQueries: parseBool("DB_LOG_QUERIES", false),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("JWT_SECRET"),
			Issuer:      os.Getenv("JWT_ISSUER"),
			OwnerOpenID: os.Getenv("OWNER_OPEN_ID"),
		},
		CORS: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		AMQP: AMQPConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Exchange: getEnv("NOTIFY_EXCHANGE", "crm-notificacoes"),
		},
		ViaCEP:        getEnv("VIACEP_URL", "https://viacep.com.br/ws"),
		QuoteLinkBase: getEnv("QUOTE_LINK_BASE", "http://localhost:5173/orcamentos"),
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in release mode")
		}
		cfg.Auth.JWTSecret = "default_super_secret_key" // development only
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a URL built from the DB_* parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Name + "?sslmode=" + c.SSLMode
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid boolean for %s: %s", key, v)
		return def
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
