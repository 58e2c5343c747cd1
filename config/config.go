package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL      string
	JWTSecretKey     string
	ServerPort       int
	DBConnectTimeout time.Duration
	DBAutoMigrate    bool
	LogLevel         slog.Level
	TokenTTL         time.Duration

	AdminUsername string
	AdminPassword string

	Backup BackupConfig

	CORSAllowedOrigins []string
}

// BackupConfig describes the S3-compatible bucket that receives exports.
type BackupConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
}

// Enabled reports whether a destination bucket is configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	connectTimeout, err := time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT environment variable: %w", err)
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE environment variable: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL environment variable: %w", err)
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", tokenTTL)
	}

	adminUser := os.Getenv("ADMIN_USERNAME")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if (adminUser == "") != (adminPass == "") {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	cfg := &Config{
		DatabaseURL:      dbURL,
		JWTSecretKey:     jwtKey,
		ServerPort:       port,
		DBConnectTimeout: connectTimeout,
		DBAutoMigrate:    autoMigrate,
		LogLevel:         level,
		TokenTTL:         tokenTTL,
		AdminUsername:    adminUser,
		AdminPassword:    adminPass,
		Backup: BackupConfig{
			Endpoint:        os.Getenv("BACKUP_ENDPOINT"),
			Region:          getEnv("BACKUP_REGION", "auto"),
			AccessKeyID:     os.Getenv("BACKUP_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("BACKUP_SECRET_ACCESS_KEY"),
			Bucket:          os.Getenv("BACKUP_BUCKET"),
			Prefix:          strings.Trim(getEnv("BACKUP_PREFIX", "backup"), "/"),
		},
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.Backup.Enabled() && (cfg.Backup.AccessKeyID == "" || cfg.Backup.SecretAccessKey == "") {
		return nil, fmt.Errorf("BACKUP_BUCKET requires BACKUP_ACCESS_KEY_ID and BACKUP_SECRET_ACCESS_KEY")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
