package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                string
	Port                  string
	DatabaseURL           string
	RedisURL              string
	OutputRoot            string
	Media                 MediaConfig
	GeminiModel           string
	GeminiBaseURL         string
	OpenAIModel           string
	OpenAIBaseURL         string
	ElevenLabsBaseURL     string
	PexelsBaseURL         string
	ProviderTimeout       time.Duration
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	CORSAllowedOrigins    []string
	BatchRateLimitPerHour int
	EventBuffer           int
	ScheduleCron          string
}

// MediaConfig holds the encoder settings. It can be supplied through the YAML
// file named by MEDIA_CONFIG; environment variables take precedence.
type MediaConfig struct {
	FFmpegPath  string `yaml:"ffmpeg"`
	FFprobePath string `yaml:"ffprobe"`
	CaptionFont string `yaml:"caption_font"`
	OutputRoot  string `yaml:"output_root"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	media, err := loadMediaFile(os.Getenv("MEDIA_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		OutputRoot:  getEnv("OUTPUT_ROOT", coalesce(media.OutputRoot, "./ads")),
		Media: MediaConfig{
			FFmpegPath:  getEnv("FFMPEG_PATH", coalesce(media.FFmpegPath, "ffmpeg")),
			FFprobePath: getEnv("FFPROBE_PATH", coalesce(media.FFprobePath, "ffprobe")),
			CaptionFont: getEnv("CAPTION_FONT", media.CaptionFont),
		},
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ElevenLabsBaseURL:     getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		PexelsBaseURL:         getEnv("PEXELS_BASE_URL", "https://api.pexels.com"),
		ProviderTimeout:       time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 120)),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		BatchRateLimitPerHour: getEnvInt("BATCH_RATE_LIMIT_PER_HOUR", 12),
		EventBuffer:           getEnvInt("EVENT_BUFFER", 64),
		ScheduleCron:          getEnv("SCHEDULE_CRON", "0 2 25 * *"),
	}
	cfg.Media.OutputRoot = cfg.OutputRoot

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EventBuffer <= 0 {
		return nil, fmt.Errorf("EVENT_BUFFER must be positive")
	}

	return cfg, nil
}

func loadMediaFile(path string) (MediaConfig, error) {
	var media MediaConfig
	path = strings.TrimSpace(path)
	if path == "" {
		return media, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return media, fmt.Errorf("read media config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &media); err != nil {
		return media, fmt.Errorf("parse media config: %w", err)
	}
	return media, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
