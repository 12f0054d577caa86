package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Quota    QuotaConfig
	Llm      LLMConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	Backend            string // "memory", "database" or "sheet"
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	TimeoutSeconds       int
	SweepIntervalSeconds int
	HistoryWindow        int
}

type QuotaConfig struct {
	DailyLimit       int
	MinFeedbackWords int
}

type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	Referer        string
}

type AdminConfig struct {
	AdminIDs  []int64
	JWTSecret string
	Email     string
	Password  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", ""),
			Backend:            getEnv("SESSION_BACKEND", "memory"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			TimeoutSeconds:       getEnvAsInt("SESSION_TIMEOUT_SECONDS", 1800),
			SweepIntervalSeconds: getEnvAsInt("SWEEP_INTERVAL_SECONDS", 600),
			HistoryWindow:        getEnvAsInt("HISTORY_WINDOW_TURNS", 20),
		},
		Quota: QuotaConfig{
			DailyLimit:       getEnvAsInt("DAILY_DISCUSSION_LIMIT", 1),
			MinFeedbackWords: getEnvAsInt("MIN_FEEDBACK_WORDS", 3),
		},
		Llm: LLMConfig{
			APIKey:         getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:        getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:          getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini-search-preview"),
			TimeoutSeconds: getEnvAsInt("LLM_TIMEOUT_SECONDS", 60),
			Referer:        getEnv("OPENROUTER_REFERER", "https://language-mirror-bot.com"),
		},
		Admin: AdminConfig{
			AdminIDs:  getEnvAsInt64List("ADMIN_IDS"),
			JWTSecret: getEnv("JWT_SECRET", ""),
			Email:     getEnv("ADMIN_EMAIL", "admin@language-mirror.local"),
			Password:  getEnv("ADMIN_PASSWORD", ""),
		},
	}
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

func getEnvAsInt64List(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if v, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}
