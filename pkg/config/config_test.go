package config

import (
	"errors"
	"testing"
	"time"
)

// clearEnv blanks every key Load reads so tests are isolated from the
// surrounding process environment. t.Setenv restores the originals.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DEBUG", "PORT", "HOST",
		"MODEL_CACHE_DIR", "IMAGE_MODEL", "TEXT_MODEL",
		"TEMP_IMAGE_DIR", "LOG_LEVEL",
		"OLLAMA_HOST", "DATA_DIR",
		"CLEANUP_INTERVAL", "MAX_IMAGE_AGE", "MAX_UPLOAD_SIZE",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Debug != true {
		t.Errorf("Debug = %v, want true", cfg.Debug)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Host, "localhost")
	}
	if cfg.ModelCacheDir != "./models/cache" {
		t.Errorf("ModelCacheDir = %q, want %q", cfg.ModelCacheDir, "./models/cache")
	}
	if cfg.ImageModel != "blip2" {
		t.Errorf("ImageModel = %q, want %q", cfg.ImageModel, "blip2")
	}
	if cfg.TextModel != "llama2" {
		t.Errorf("TextModel = %q, want %q", cfg.TextModel, "llama2")
	}
	if cfg.TempImageDir != "./temp_images" {
		t.Errorf("TempImageDir = %q, want %q", cfg.TempImageDir, "./temp_images")
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "INFO")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEBUG", "false")
	t.Setenv("PORT", "9191")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("MODEL_CACHE_DIR", "/var/cache/models")
	t.Setenv("IMAGE_MODEL", "llava")
	t.Setenv("TEXT_MODEL", "mistral")
	t.Setenv("TEMP_IMAGE_DIR", "/tmp/vqa")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Debug != false {
		t.Errorf("Debug = %v, want false", cfg.Debug)
	}
	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want %q", cfg.Host, "0.0.0.0")
	}
	if cfg.ModelCacheDir != "/var/cache/models" {
		t.Errorf("ModelCacheDir = %q, want %q", cfg.ModelCacheDir, "/var/cache/models")
	}
	if cfg.ImageModel != "llava" {
		t.Errorf("ImageModel = %q, want %q", cfg.ImageModel, "llava")
	}
	if cfg.TextModel != "mistral" {
		t.Errorf("TextModel = %q, want %q", cfg.TextModel, "mistral")
	}
	if cfg.TempImageDir != "/tmp/vqa" {
		t.Errorf("TempImageDir = %q, want %q", cfg.TempImageDir, "/tmp/vqa")
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "DEBUG")
	}
}

func TestLoadPortOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	// Everything else stays at its documented default.
	if cfg.Debug != true {
		t.Errorf("Debug = %v, want true", cfg.Debug)
	}
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Host, "localhost")
	}
	if cfg.ModelCacheDir != "./models/cache" {
		t.Errorf("ModelCacheDir = %q, want %q", cfg.ModelCacheDir, "./models/cache")
	}
	if cfg.ImageModel != "blip2" {
		t.Errorf("ImageModel = %q, want %q", cfg.ImageModel, "blip2")
	}
	if cfg.TextModel != "llama2" {
		t.Errorf("TextModel = %q, want %q", cfg.TextModel, "llama2")
	}
	if cfg.TempImageDir != "./temp_images" {
		t.Errorf("TempImageDir = %q, want %q", cfg.TempImageDir, "./temp_images")
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "INFO")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric port", key: "PORT", value: "abc"},
		{name: "fractional port", key: "PORT", value: "80.80"},
		{name: "unrecognized debug token", key: "DEBUG", value: "maybe"},
		{name: "bad cleanup interval", key: "CLEANUP_INTERVAL", value: "soon"},
		{name: "bad max image age", key: "MAX_IMAGE_AGE", value: "yesterday"},
		{name: "bad upload size", key: "MAX_UPLOAD_SIZE", value: "ten megs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("Load() = %+v, want error for %s=%q", cfg, tt.key, tt.value)
			}

			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load() error = %v, want *config.Error", err)
			}
			if cfgErr.Key != tt.key {
				t.Errorf("Error.Key = %q, want %q", cfgErr.Key, tt.key)
			}
			if cfgErr.Value != tt.value {
				t.Errorf("Error.Value = %q, want %q", cfgErr.Value, tt.value)
			}
		})
	}
}

func TestLoadDebugTokens(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "True", want: true},
		{value: "False", want: false},
		{value: "true", want: true},
		{value: "false", want: false},
		{value: "1", want: true},
		{value: "0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEBUG", tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v, want nil", err)
			}
			if cfg.Debug != tt.want {
				t.Errorf("Debug = %v, want %v", cfg.Debug, tt.want)
			}
		})
	}
}

func TestLoadIdempotent(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("LOG_LEVEL", "WARNING")

	first, err := Load()
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}
	second, err := Load()
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if *first != *second {
		t.Errorf("consecutive loads differ: %+v vs %+v", first, second)
	}
}

func TestLoadSupplementaryDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.OllamaHost != "http://localhost:11434" {
		t.Errorf("OllamaHost = %q, want %q", cfg.OllamaHost, "http://localhost:11434")
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "./data")
	}
	if cfg.CleanupInterval != time.Hour {
		t.Errorf("CleanupInterval = %v, want %v", cfg.CleanupInterval, time.Hour)
	}
	if cfg.MaxImageAge != 24*time.Hour {
		t.Errorf("MaxImageAge = %v, want %v", cfg.MaxImageAge, 24*time.Hour)
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Errorf("MaxUploadSize = %d, want %d", cfg.MaxUploadSize, 10*1024*1024)
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := &Config{
		Host:          "localhost",
		Port:          8000,
		DataDir:       "/test/data",
		ModelCacheDir: "/test/cache",
	}

	tests := []struct {
		name   string
		method func() string
		want   string
	}{
		{
			name:   "ServerAddress",
			method: cfg.ServerAddress,
			want:   "localhost:8000",
		},
		{
			name:   "DBPath",
			method: cfg.DBPath,
			want:   "/test/data/vqa.db",
		},
		{
			name:   "ManifestPath",
			method: cfg.ManifestPath,
			want:   "/test/cache/manifest.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.method()
			if got != tt.want {
				t.Errorf("%s() = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
