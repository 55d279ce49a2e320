package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	Password        string
	LogDirectory    string
	StaticDirectory string
	CamerasFile     string
	Camera          string // Camera selected at startup (empty = first in the list)
	StreamURL       string // Single stream used instead of the cameras file
	ExpectedMarker  string
	HoldDuration    time.Duration
	PollInterval    time.Duration
	RetryDelay      time.Duration
	MaxRetryDelay   time.Duration
	StopTimeout     time.Duration
	PanelTemplate   string
	PreviewQuality  int
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Port:            getEnvAsInt("PORT", 8080),
		Password:        getEnv("PASSWORD", "raktar"),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StaticDirectory: getEnv("STATIC_DIR", filepath.Join(".", "static")),
		CamerasFile:     getEnv("CAMERAS_FILE", "cameras.yaml"),
		Camera:          getEnv("CAMERA", ""),
		StreamURL:       getEnv("STREAM_URL", ""),
		ExpectedMarker:  getEnv("EXPECTED_MARKER", "PALLET"),
		HoldDuration:    getEnvAsDuration("HOLD_DURATION_MS", 5*time.Second),
		PollInterval:    getEnvAsDuration("POLL_INTERVAL_MS", 30*time.Millisecond), // ~33 ticks per second
		RetryDelay:      getEnvAsDuration("RETRY_DELAY_MS", 500*time.Millisecond),
		MaxRetryDelay:   getEnvAsDuration("MAX_RETRY_DELAY_MS", 5*time.Second),
		StopTimeout:     getEnvAsDuration("STOP_TIMEOUT_MS", 2*time.Second),
		PanelTemplate:   getEnv("PANEL_TEMPLATE", ""),
		PreviewQuality:  getEnvAsInt("PREVIEW_QUALITY", 75),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration reads a positive number of milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
