package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/itiroinazawa/image-vqa-agent/pkg/errors"
	"github.com/itiroinazawa/image-vqa-agent/pkg/ollama"
)

// VisionModel answers questions about a single image. The image is passed as
// encoded bytes produced by ImageService.EncodeForModel.
type VisionModel interface {
	Caption(ctx context.Context, image []byte) (string, error)
	Answer(ctx context.Context, image []byte, question string) (string, error)
}

// LanguageModel completes a text prompt.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	captionPrompt = "Describe this image in one short sentence."

	// Vision probes answer best with low temperature; the language model
	// gets room to phrase the final answer.
	visionTemperature   = 0.1
	languageTemperature = 0.7
)

// ModelService runs vision and language requests against an Ollama-compatible
// backend. It implements both VisionModel and LanguageModel.
type ModelService struct {
	client     *ollama.Client
	imageModel string
	textModel  string
	cacheDir   string
}

func NewModelService(client *ollama.Client, imageModel, textModel, cacheDir string) *ModelService {
	return &ModelService{
		client:     client,
		imageModel: imageModel,
		textModel:  textModel,
		cacheDir:   cacheDir,
	}
}

// Ping verifies the inference backend is reachable and returns its version.
func (s *ModelService) Ping(ctx context.Context) (string, error) {
	version, err := s.client.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("probing inference backend: %w", apperrors.ErrModelUnavailable)
	}
	return version, nil
}

// Caption generates a one-line caption for the image.
func (s *ModelService) Caption(ctx context.Context, image []byte) (string, error) {
	return s.Answer(ctx, image, captionPrompt)
}

// Answer asks the vision model a free-form question about the image.
func (s *ModelService) Answer(ctx context.Context, image []byte, question string) (string, error) {
	resp, err := s.client.Generate(ctx, ollama.GenerateRequest{
		Model:  s.imageModel,
		Prompt: question,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Options: &ollama.Options{
			Temperature: visionTemperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision model %s: %w", s.imageModel, err)
	}
	return strings.TrimSpace(resp.Response), nil
}

// Complete runs the text model over the prompt.
func (s *ModelService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Generate(ctx, ollama.GenerateRequest{
		Model:  s.textModel,
		Prompt: prompt,
		Options: &ollama.Options{
			Temperature: languageTemperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("language model %s: %w", s.textModel, err)
	}
	return strings.TrimSpace(resp.Response), nil
}

// cacheManifest records which models were verified against which backend.
type cacheManifest struct {
	BackendVersion string    `json:"backend_version"`
	Models         []string  `json:"models"`
	VerifiedAt     time.Time `json:"verified_at"`
}

// EnsureModels verifies the backend is up and that both configured models are
// available, pulling any that are missing. A manifest of the verified models
// is written to the cache directory.
func (s *ModelService) EnsureModels(ctx context.Context) error {
	version, err := s.Ping(ctx)
	if err != nil {
		return err
	}

	available, err := s.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}
	present := make(map[string]bool, len(available))
	for _, model := range available {
		present[model.Name] = true
		// Tag-less references match the :latest entry.
		present[strings.TrimSuffix(model.Name, ":latest")] = true
	}

	for _, name := range []string{s.imageModel, s.textModel} {
		if present[name] {
			continue
		}
		log.WithField("model", name).Info("Model not present on backend, pulling")
		if err := s.client.Pull(ctx, name); err != nil {
			return fmt.Errorf("pulling model %s: %w", name, err)
		}
	}

	if err := s.writeManifest(version); err != nil {
		// The manifest is bookkeeping; a failed write shouldn't stop startup.
		log.WithError(err).Warn("Failed to write model cache manifest")
	}

	log.WithFields(log.Fields{
		"backend_version": version,
		"image_model":     s.imageModel,
		"text_model":      s.textModel,
	}).Info("Models verified")
	return nil
}

func (s *ModelService) writeManifest(backendVersion string) error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("creating model cache directory: %w", err)
	}

	manifest := cacheManifest{
		BackendVersion: backendVersion,
		Models:         []string{s.imageModel, s.textModel},
		VerifiedAt:     time.Now(),
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(s.cacheDir, "manifest.json"), data, 0644)
}
