package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	Storage     string
	DatabaseURL string
	ServerPort  int

	CurrentEdition  string
	PreviousEdition string

	AdminPasscodeHash string
	JWTSecretKey      string
	AdminTokenTTL     time.Duration

	SyncInterval   time.Duration
	SagaCompensate bool

	LogFormat string
	LogLevel  slog.Level

	CORSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	GeminiAPIKey    string
	GeminiTextModel string
	GeminiTTSModel  string
	GeminiVoice     string
	NarratorPersona string

	LegacyPointsColumn int
}

// R2Enabled сообщает, заданы ли настройки Cloudflare R2.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию через getenv и проверяет её.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Storage:            strings.ToLower(get("STORAGE", StoragePostgres)),
		DatabaseURL:        get("DATABASE_URL", ""),
		CurrentEdition:     get("CURRENT_EDITION", "2026"),
		PreviousEdition:    get("PREVIOUS_EDITION", "2025"),
		AdminPasscodeHash:  get("ADMIN_PASSCODE_HASH", ""),
		JWTSecretKey:       get("JWT_SECRET_KEY", ""),
		LogFormat:          strings.ToLower(get("LOG_FORMAT", LogFormatJSON)),
		R2AccountID:        get("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:      get("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:  get("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:       get("R2_BUCKET_NAME", ""),
		R2PublicBaseURL:    get("R2_PUBLIC_BASE_URL", ""),
		GeminiAPIKey:       get("GEMINI_API_KEY", ""),
		GeminiTextModel:    get("GEMINI_TEXT_MODEL", ""),
		GeminiTTSModel:     get("GEMINI_TTS_MODEL", ""),
		GeminiVoice:        get("GEMINI_VOICE", ""),
		NarratorPersona:    get("NARRATOR_PERSONA", ""),
		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "")),
	}

	var errs []error
	var err error

	if cfg.ServerPort, err = strconv.Atoi(get("SERVER_PORT", "8080")); err != nil {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err))
	} else if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort))
	}

	if cfg.AdminTokenTTL, err = time.ParseDuration(get("ADMIN_TOKEN_TTL", "12h")); err != nil || cfg.AdminTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid ADMIN_TOKEN_TTL %q", getenv("ADMIN_TOKEN_TTL")))
	}
	if cfg.SyncInterval, err = time.ParseDuration(get("SYNC_INTERVAL", "30s")); err != nil || cfg.SyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("invalid SYNC_INTERVAL %q", getenv("SYNC_INTERVAL")))
	}
	if cfg.SagaCompensate, err = strconv.ParseBool(get("SAGA_COMPENSATE", "false")); err != nil {
		errs = append(errs, fmt.Errorf("invalid SAGA_COMPENSATE: %w", err))
	}
	if cfg.LegacyPointsColumn, err = strconv.Atoi(get("LEGACY_POINTS_COLUMN", "12")); err != nil || cfg.LegacyPointsColumn < 0 {
		errs = append(errs, fmt.Errorf("invalid LEGACY_POINTS_COLUMN %q", getenv("LEGACY_POINTS_COLUMN")))
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is not set"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage))
	}

	if cfg.LogFormat != LogFormatJSON && cfg.LogFormat != LogFormatText {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, cfg.LogFormat))
	}
	if cfg.CurrentEdition == cfg.PreviousEdition {
		errs = append(errs, fmt.Errorf("CURRENT_EDITION and PREVIOUS_EDITION must differ, both are %q", cfg.CurrentEdition))
	}
	if cfg.AdminPasscodeHash != "" && cfg.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required when ADMIN_PASSCODE_HASH is set"))
	}

	// R2 настраивается целиком или не настраивается вовсе
	r2 := []string{cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2BucketName, cfg.R2PublicBaseURL}
	set := 0
	for _, v := range r2 {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(r2) {
		errs = append(errs, errors.New("R2 settings are partial: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
