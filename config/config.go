package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally via a .env file) with sensible defaults; a
// device profile can override the recorder-specific ones.
type Config struct {
	RecordingsDir string // Directory scanned for recorder segments
	ExportDir     string // Root directory exported clips are filed under
	ProfilePath   string // Optional YAML device profile

	FFmpegPath string
	AudioExt   string // e.g. ".mp3"
	MarkerExt  string // e.g. ".tmk"

	GapSeconds          float64 // Max accumulated gap within one marker burst
	ShortNoteLookback   float64
	LongNoteLookback    float64
	ProjectIdeaLookback float64

	Workers       int  // Recording groups processed in parallel
	KeepOriginals bool // Skip deleting source segments after export

	CatalogPath string // SQLite session catalog; empty disables it

	WatchSettle time.Duration // Quiet period before watch mode processes

	MetricsAddr string // Prometheus listen address; empty disables it

	LogLevel      string
	LogPath       string // Empty logs to console only
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool

	// MinIO clip archive; empty endpoint disables it.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default
// value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default
// value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or
// defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		RecordingsDir: getEnv("RECORDINGS_DIR", "recordings"),
		ExportDir:     getEnv("EXPORT_DIR", "exports"),
		ProfilePath:   getEnv("DEVICE_PROFILE", ""),

		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
		AudioExt:   getEnv("AUDIO_EXT", ".mp3"),
		MarkerExt:  getEnv("MARKER_EXT", ".tmk"),

		GapSeconds:          getEnvFloat("MARKER_GAP_SECONDS", 30),
		ShortNoteLookback:   getEnvFloat("SHORT_NOTE_LOOKBACK", 60),
		LongNoteLookback:    getEnvFloat("LONG_NOTE_LOOKBACK", 120),
		ProjectIdeaLookback: getEnvFloat("PROJECT_IDEA_LOOKBACK", 300),

		Workers:       getEnvInt("WORKERS", 4),
		KeepOriginals: getEnvBool("KEEP_ORIGINALS", false),

		CatalogPath: getEnv("CATALOG_PATH", "journal.sqlite"),

		WatchSettle: time.Duration(getEnvInt("WATCH_SETTLE_SECONDS", 30)) * time.Second,

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", false),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"), // No hardcoded default for secrets
		MinioBucket:    getEnv("MINIO_BUCKET", "journal-clips"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}
}
