package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/itiroinazawa/image-vqa-agent/pkg/errors"
)

// pngBytes renders a small solid-color PNG for use as a valid image fixture.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture PNG: %v", err)
	}
	return buf.Bytes()
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(dir, time.Hour)

	path, err := service.SaveUpload(pngBytes(t, 4, 4))
	if err != nil {
		t.Fatalf("SaveUpload() error = %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("saved outside temp dir: %s", path)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("path = %s, want .jpg suffix", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestSaveUploadCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "temp_images")
	service := NewImageService(dir, time.Hour)

	if _, err := service.SaveUpload(pngBytes(t, 4, 4)); err != nil {
		t.Fatalf("SaveUpload() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("temp dir not created: %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(dir, time.Hour)

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "valid png", data: pngBytes(t, 4, 4), wantErr: false},
		{name: "not an image", data: []byte("definitely not an image"), wantErr: true},
		{name: "empty file", data: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".jpg")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatalf("failed to write fixture: %v", err)
			}

			err := service.Validate(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && !apperrors.IsInvalidInput(err) {
				t.Errorf("Validate() error = %v, want ErrInvalidImage", err)
			}
		})
	}
}

func TestEncodeForModel(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(dir, time.Hour)

	path := filepath.Join(dir, "fixture.png")
	if err := os.WriteFile(path, pngBytes(t, 16, 16), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	data, err := service.EncodeForModel(path)
	if err != nil {
		t.Fatalf("EncodeForModel() error = %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("encoded payload does not decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want %q", format, "jpeg")
	}
	if cfg.Width != 16 || cfg.Height != 16 {
		t.Errorf("dimensions = %dx%d, want 16x16", cfg.Width, cfg.Height)
	}
}

func TestEncodeForModelScalesDown(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(dir, time.Hour)

	path := filepath.Join(dir, "large.png")
	if err := os.WriteFile(path, pngBytes(t, 1024, 512), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	data, err := service.EncodeForModel(path)
	if err != nil {
		t.Fatalf("EncodeForModel() error = %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("encoded payload does not decode: %v", err)
	}
	if cfg.Width > modelImageMaxDim || cfg.Height > modelImageMaxDim {
		t.Errorf("dimensions = %dx%d, want both <= %d", cfg.Width, cfg.Height, modelImageMaxDim)
	}
}

func TestResolveImage(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(dir, time.Hour)

	if err := os.WriteFile(filepath.Join(dir, "present.jpg"), pngBytes(t, 4, 4), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	path, err := service.ResolveImage("present.jpg")
	if err != nil {
		t.Fatalf("ResolveImage() error = %v", err)
	}
	if path != filepath.Join(dir, "present.jpg") {
		t.Errorf("path = %s, want inside %s", path, dir)
	}

	if _, err := service.ResolveImage("absent.jpg"); !apperrors.IsNotFound(err) {
		t.Errorf("ResolveImage(absent) error = %v, want ErrNotFound", err)
	}
}

func TestCleanupTempImages(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(dir, time.Hour)

	oldPath := filepath.Join(dir, "old.jpg")
	freshPath := filepath.Join(dir, "fresh.jpg")
	for _, path := range []string{oldPath, freshPath} {
		if err := os.WriteFile(path, pngBytes(t, 4, 4), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}

	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatalf("failed to age fixture: %v", err)
	}

	removed, err := service.CleanupTempImages()
	if err != nil {
		t.Fatalf("CleanupTempImages() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old image still present")
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Errorf("fresh image removed: %v", err)
	}
}

func TestCleanupTempImagesMissingDir(t *testing.T) {
	service := NewImageService(filepath.Join(t.TempDir(), "never_created"), time.Hour)

	removed, err := service.CleanupTempImages()
	if err != nil {
		t.Fatalf("CleanupTempImages() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
