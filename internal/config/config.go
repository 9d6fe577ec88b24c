package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int `validate:"gte=0"`
	MaxIdleConns       int `validate:"gte=0"`
	ConnMaxLifetimeSec int `validate:"gte=0"`
	AutoMigrate        bool
}

// MinIOConfig holds object storage settings for MinIO.
// Object storage is optional: when Endpoint is empty uploaded PDFs are not archived.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object storage endpoint is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// OpenAIConfig holds settings for the embedding and chat completion API.
type OpenAIConfig struct {
	APIKey         string  `validate:"required"`
	BaseURL        string  `validate:"omitempty,url"`
	EmbeddingModel string  `validate:"required"`
	ChatModel      string  `validate:"required"`
	Temperature    float64 `validate:"gte=0,lte=2"`
	MaxTokens      int     `validate:"gt=0"`
	TimeoutSec     int     `validate:"gt=0"`
}

// RAGConfig controls chunking, retrieval and embedding fan-out.
type RAGConfig struct {
	ChunkSize          int `validate:"gt=0"`
	ChunkOverlap       int `validate:"gte=0,ltfield=ChunkSize"`
	TopK               int `validate:"gt=0"`
	EmbeddingBatchSize int `validate:"gt=0,lte=2048"`
	EmbeddingWorkers   int `validate:"gt=0"`
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	BaseURL    string `validate:"required,url"`
	MaxResults int    `validate:"gt=0"`
	TimeoutSec int    `validate:"gt=0"`
}

// SessionConfig holds cookie session settings.
// Dir is where the session database lives; empty keeps sessions in memory.
type SessionConfig struct {
	Dir           string
	CookieName    string `validate:"required"`
	CookieSecure  bool
	ExpirationMin int `validate:"gt=0"`
}

// AdminConfig holds the credentials of the single administrator account.
// An empty Password disables admin login.
type AdminConfig struct {
	Username string
	Password string
}

// LogConfig selects log level and destination.
type LogConfig struct {
	Level      string `validate:"oneof=debug info warn error"`
	File       string
	MaxSizeMB  int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string `validate:"required,numeric"`
	TimeZone    string
	UploadMaxMB int `validate:"gt=0"`
	CORSOrigins string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	OpenAI      OpenAIConfig
	RAG         RAGConfig
	Search      SearchConfig
	Session     SessionConfig
	Admin       AdminConfig
	Log         LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		TimeZone:    getEnv("APP_TIMEZONE", "UTC"),
		UploadMaxMB: getEnvInt("UPLOAD_MAX_MB", 16),
		CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "pdfchat"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),
			Temperature:    getEnvFloat("OPENAI_TEMPERATURE", 0.7),
			MaxTokens:      getEnvInt("OPENAI_MAX_TOKENS", 500),
			TimeoutSec:     getEnvInt("OPENAI_TIMEOUT_SEC", 60),
		},
		RAG: RAGConfig{
			ChunkSize:          getEnvInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:       getEnvInt("RAG_CHUNK_OVERLAP", 200),
			TopK:               getEnvInt("RAG_TOP_K", 3),
			EmbeddingBatchSize: getEnvInt("EMBEDDING_BATCH_SIZE", 100),
			EmbeddingWorkers:   getEnvInt("EMBEDDING_WORKERS", 4),
		},
		Search: SearchConfig{
			BaseURL:    getEnv("SEARCH_BASE_URL", "https://html.duckduckgo.com/html/"),
			MaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
			TimeoutSec: getEnvInt("SEARCH_TIMEOUT_SEC", 15),
		},
		Session: SessionConfig{
			Dir:           getEnv("SESSION_DIR", ""),
			CookieName:    getEnv("SESSION_COOKIE_NAME", "pdfchat_session"),
			CookieSecure:  getEnvBool("SESSION_COOKIE_SECURE", false),
			ExpirationMin: getEnvInt("SESSION_EXPIRATION_MIN", 24*60),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
	}
}

// Validate checks value ranges and cross-field constraints.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.MinIO.Enabled() && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		return fmt.Errorf("invalid configuration: minio credentials are required when MINIO_ENDPOINT is set")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid configuration: time zone %q: %w", c.TimeZone, err)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
