package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"healthassist-be/internal/constant"
)

// DefaultJwtSecret is only acceptable outside production.
const DefaultJwtSecret = "dev-secret-key"

var ErrDefaultJwtSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ai       AIConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventsTopic        string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type AuthConfig struct {
	JwtSecret string
}

type AIConfig struct {
	LLMProvider       string // "groq", "ollama" or "huggingface"
	LLMModel          string
	GroqAPIKey        string
	GroqBaseURL       string
	HuggingFaceAPIKey string
	HuggingFaceURL    string
	OllamaBaseURL     string
	Timeout           time.Duration
	SystemPrompt      string
}

type SessionConfig struct {
	LockTimeout time.Duration
	LockTTL     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			EventsTopic:        getEnv("CHAT_EVENTS_TOPIC", "chat_events"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", DefaultJwtSecret),
		},
		Ai: AIConfig{
			LLMProvider:       strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "groq"))),
			LLMModel:          strings.TrimSpace(getEnv("LLM_MODEL", "")), // empty picks the provider default
			GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
			GroqBaseURL:       getEnv("GROQ_BASE_URL", constant.DefaultGroqBaseURL),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL:    getEnv("HUGGINGFACE_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Timeout:           getEnvAsDuration("GENERATION_TIMEOUT", 8*time.Second),
			SystemPrompt:      getEnv("SYSTEM_PROMPT", constant.HealthAssistSystemPrompt),
		},
		Session: SessionConfig{
			LockTimeout: getEnvAsDuration("SESSION_LOCK_TIMEOUT", 15*time.Second),
			LockTTL:     getEnvAsDuration("SESSION_LOCK_TTL", 30*time.Second),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate rejects settings that are unsafe to serve with. Outside
// production the development JWT secret is accepted.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.Auth.JwtSecret == "" || c.Auth.JwtSecret == DefaultJwtSecret) {
		return ErrDefaultJwtSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("8s") or plain milliseconds ("8000").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if ms := getEnvAsInt(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
