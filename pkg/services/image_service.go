package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/melbahja/got"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/itiroinazawa/image-vqa-agent/pkg/errors"
)

const (
	// Images larger than this are scaled down before being sent to the
	// vision model; the backends cap usable resolution anyway.
	modelImageMaxDim = 768

	modelImageJPEGQuality = 90
)

// ImageService manages the temp-image directory: saving uploads, fetching
// URLs, validating files and expiring old ones.
type ImageService struct {
	tempDir string
	maxAge  time.Duration
}

func NewImageService(tempDir string, maxAge time.Duration) *ImageService {
	return &ImageService{
		tempDir: tempDir,
		maxAge:  maxAge,
	}
}

// TempDir returns the directory temp images live in.
func (s *ImageService) TempDir() string {
	return s.tempDir
}

// SaveUpload writes uploaded image bytes to the temp directory under a fresh
// UUID filename and returns the path.
func (s *ImageService) SaveUpload(data []byte) (string, error) {
	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return "", fmt.Errorf("creating temp image directory: %w", err)
	}

	path := filepath.Join(s.tempDir, uuid.New().String()+".jpg")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("saving uploaded image: %w", err)
	}

	log.WithField("path", path).Debug("Uploaded image saved")
	return path, nil
}

// DownloadFromURL fetches an image from rawURL into the temp directory and
// returns the saved path.
func (s *ImageService) DownloadFromURL(ctx context.Context, rawURL string) (string, error) {
	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return "", fmt.Errorf("creating temp image directory: %w", err)
	}

	path := filepath.Join(s.tempDir, uuid.New().String()+".jpg")
	download := got.NewDownload(ctx, rawURL, path)
	if err := got.New().Do(download); err != nil {
		// Leave no partial file behind.
		_ = os.Remove(path)
		return "", fmt.Errorf("downloading image from %s: %w: %w", rawURL, apperrors.ErrDownloadFailed, err)
	}

	log.WithFields(log.Fields{
		"url":  rawURL,
		"path": path,
	}).Debug("Image downloaded")
	return path, nil
}

// Validate checks that the file at path decodes as a known image format.
func (s *ImageService) Validate(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening image %s: %w", path, err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("decoding image %s: %w", path, apperrors.ErrInvalidImage)
	}
	return nil
}

// EncodeForModel loads the image, normalizes orientation and color model,
// scales it to fit the model's working resolution and re-encodes it as JPEG.
// The returned bytes are what gets shipped to the vision backend.
func (s *ImageService) EncodeForModel(path string) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, apperrors.ErrInvalidImage)
	}

	bounds := img.Bounds()
	if bounds.Dx() > modelImageMaxDim || bounds.Dy() > modelImageMaxDim {
		img = imaging.Fit(img, modelImageMaxDim, modelImageMaxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(modelImageJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encoding image %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// ResolveImage maps a bare filename to its path inside the temp directory.
// Returns ErrNotFound when the file does not exist.
func (s *ImageService) ResolveImage(name string) (string, error) {
	path := filepath.Join(s.tempDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("image %s: %w", name, apperrors.ErrNotFound)
	}
	return path, nil
}

// CleanupTempImages deletes temp images older than the configured max age and
// returns how many files were removed.
func (s *ImageService) CleanupTempImages() (int, error) {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading temp image directory: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	var removed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.WithError(err).WithField("name", entry.Name()).Warn("Failed to stat temp image")
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.tempDir, entry.Name())); err != nil {
			log.WithError(err).WithField("name", entry.Name()).Warn("Failed to remove temp image")
			continue
		}
		removed++
	}

	log.WithFields(log.Fields{
		"removed": removed,
		"max_age": s.maxAge,
	}).Info("Cleaned up temporary images")
	return removed, nil
}
