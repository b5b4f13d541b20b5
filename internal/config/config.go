package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Mode values for the PixelLab client. Only live mode is implemented; the
// field exists as an extension point for a future simulated mode.
const (
	ModeLive = "live"
)

// DefaultBaseURL is the PixelLab API endpoint.
const DefaultBaseURL = "https://api.pixellab.ai/v2"

// Config holds all configuration for the application
type Config struct {
	PixelLab PixelLabConfig
	Gallery  GalleryConfig
	Server   ServerConfig
	LogLevel string
}

// PixelLabConfig holds PixelLab API client configuration
type PixelLabConfig struct {
	APIKey              string
	BaseURL             string
	Mode                string
	RequestTimeout      int // HTTP request timeout in seconds
	PollIntervalSeconds int // fixed interval between background job polls
	MaxJobWaitSeconds   int // ceiling for background job polling
}

// GalleryConfig holds gallery output configuration
type GalleryConfig struct {
	Dir          string // gallery root, holds the manifest
	ImagesDir    string // PNG output directory
	ManifestPath string // JSON metadata manifest
	RequestsPath string // optional YAML request list; empty means built-in
}

// ServerConfig holds preview server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  int
	WriteTimeout int
	RootDir      string // directory served for local preview
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (optional)
	_ = godotenv.Load()

	galleryDir := getEnv("GALLERY_DIR", filepath.Join("assets", "gallery"))

	cfg := &Config{
		PixelLab: PixelLabConfig{
			APIKey:              getEnv("PIXELLAB_API_KEY", ""),
			BaseURL:             getEnv("PIXELLAB_BASE_URL", DefaultBaseURL),
			Mode:                getEnv("PIXELLAB_MODE", ModeLive),
			RequestTimeout:      getEnvAsInt("PIXELLAB_REQUEST_TIMEOUT", 120),
			PollIntervalSeconds: getEnvAsInt("PIXELLAB_POLL_INTERVAL", 2),
			MaxJobWaitSeconds:   getEnvAsInt("PIXELLAB_MAX_JOB_WAIT", 300),
		},
		Gallery: GalleryConfig{
			Dir:          galleryDir,
			ImagesDir:    getEnv("GALLERY_IMAGES_DIR", filepath.Join(galleryDir, "images")),
			ManifestPath: getEnv("GALLERY_MANIFEST", filepath.Join(galleryDir, "metadata.json")),
			RequestsPath: getEnv("GALLERY_REQUESTS", ""),
		},
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 5555),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
			RootDir:      getEnv("SERVER_ROOT", "."),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.PixelLab.Mode != ModeLive {
		return nil, fmt.Errorf("unsupported PIXELLAB_MODE %q: only %q is implemented", cfg.PixelLab.Mode, ModeLive)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
