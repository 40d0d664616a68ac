package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultDebug         = true
	defaultPort          = 8000
	defaultHost          = "localhost"
	defaultModelCacheDir = "./models/cache"
	defaultImageModel    = "blip2"
	defaultTextModel     = "llama2"
	defaultTempImageDir  = "./temp_images"
	defaultLogLevel      = "INFO"

	defaultOllamaHost      = "http://localhost:11434"
	defaultDataDir         = "./data"
	defaultCleanupInterval = time.Hour
	defaultMaxImageAge     = 24 * time.Hour
	defaultMaxUploadSize   = 10 * 1024 * 1024
)

// Config holds all application configuration. It is resolved once at startup
// and never mutated afterwards.
type Config struct {
	// Server configuration
	Debug bool   `json:"debug"`
	Port  int    `json:"port"`
	Host  string `json:"host"`

	// Model configuration
	ModelCacheDir string `json:"model_cache_dir"`
	ImageModel    string `json:"image_model"`
	TextModel     string `json:"text_model"`

	// Image handling
	TempImageDir string `json:"temp_image_dir"`

	// Logging
	LogLevel string `json:"log_level"`

	// Inference backend
	OllamaHost string `json:"ollama_host"`

	// Storage and maintenance
	DataDir         string        `json:"data_dir"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
	MaxImageAge     time.Duration `json:"max_image_age"`
	MaxUploadSize   int64         `json:"max_upload_size"`
}

// Error reports an environment value that could not be coerced to the type
// its key requires. A missing key is never an Error; the default applies.
type Error struct {
	Key   string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid value for %s: %q: %v", e.Key, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load resolves the configuration from environment variables. Every key has a
// default, so an empty environment is valid. A value that is present but
// cannot be parsed fails the load; it never silently falls back to the default.
//
// Load reads environment state only. It does not create MODEL_CACHE_DIR,
// TEMP_IMAGE_DIR or DATA_DIR; that is the caller's responsibility.
func Load() (*Config, error) {
	cfg := &Config{
		Host:          getEnvOrDefault("HOST", defaultHost),
		ModelCacheDir: getEnvOrDefault("MODEL_CACHE_DIR", defaultModelCacheDir),
		ImageModel:    getEnvOrDefault("IMAGE_MODEL", defaultImageModel),
		TextModel:     getEnvOrDefault("TEXT_MODEL", defaultTextModel),
		TempImageDir:  getEnvOrDefault("TEMP_IMAGE_DIR", defaultTempImageDir),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OllamaHost:    getEnvOrDefault("OLLAMA_HOST", defaultOllamaHost),
		DataDir:       getEnvOrDefault("DATA_DIR", defaultDataDir),
	}

	var err error
	if cfg.Debug, err = getEnvBool("DEBUG", defaultDebug); err != nil {
		return nil, err
	}
	if cfg.Port, err = getEnvInt("PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.CleanupInterval, err = getEnvDuration("CLEANUP_INTERVAL", defaultCleanupInterval); err != nil {
		return nil, err
	}
	if cfg.MaxImageAge, err = getEnvDuration("MAX_IMAGE_AGE", defaultMaxImageAge); err != nil {
		return nil, err
	}
	if cfg.MaxUploadSize, err = getEnvInt64("MAX_UPLOAD_SIZE", defaultMaxUploadSize); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ServerAddress returns the host:port the HTTP server binds to.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBPath returns the path of the exchange database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "vqa.db")
}

// ManifestPath returns the path of the model cache manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.ModelCacheDir, "manifest.json")
}

// Helper functions
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, &Error{Key: key, Value: value, Err: err}
	}
	return boolValue, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, &Error{Key: key, Value: value, Err: err}
	}
	return intValue, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &Error{Key: key, Value: value, Err: err}
	}
	return intValue, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, &Error{Key: key, Value: value, Err: err}
	}
	return duration, nil
}
