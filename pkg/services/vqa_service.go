package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/itiroinazawa/image-vqa-agent/pkg/models"
)

const (
	probeColors  = "What are the main colors in this image?"
	probeObjects = "What objects can you see in this image?"
	probeScene   = "Describe the scene in this image."

	answerPromptFormat = `Based on the following image information:
Caption: %s
Colors: %s
Objects: %s
Scene: %s
Direct answer from image model: %s

Please provide a detailed and accurate answer to this question: %s

Answer:`
)

// ImageEncoder prepares an image file for the vision backend.
type ImageEncoder interface {
	EncodeForModel(path string) ([]byte, error)
}

// VQAService runs the two-stage question answering pipeline: the vision model
// extracts a visual profile of the image, then the language model composes the
// final answer from that profile.
type VQAService struct {
	encoder  ImageEncoder
	vision   VisionModel
	language LanguageModel
}

func NewVQAService(encoder ImageEncoder, vision VisionModel, language LanguageModel) *VQAService {
	return &VQAService{
		encoder:  encoder,
		vision:   vision,
		language: language,
	}
}

// ProfileImage extracts the visual profile: a caption plus answers to the
// three standing probe questions.
func (s *VQAService) ProfileImage(ctx context.Context, imagePath string) (*models.VisualProfile, error) {
	payload, err := s.encoder.EncodeForModel(imagePath)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return s.profile(ctx, payload)
}

func (s *VQAService) profile(ctx context.Context, payload []byte) (*models.VisualProfile, error) {
	caption, err := s.vision.Caption(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("generating caption: %w", err)
	}

	colors, err := s.vision.Answer(ctx, payload, probeColors)
	if err != nil {
		return nil, fmt.Errorf("probing colors: %w", err)
	}
	objects, err := s.vision.Answer(ctx, payload, probeObjects)
	if err != nil {
		return nil, fmt.Errorf("probing objects: %w", err)
	}
	scene, err := s.vision.Answer(ctx, payload, probeScene)
	if err != nil {
		return nil, fmt.Errorf("probing scene: %w", err)
	}

	return &models.VisualProfile{
		Caption: caption,
		Colors:  colors,
		Objects: objects,
		Scene:   scene,
	}, nil
}

// AnswerQuestion answers a question about the image at imagePath. It returns
// the composed answer together with the visual profile used to produce it.
func (s *VQAService) AnswerQuestion(ctx context.Context, imagePath, question string) (string, *models.VisualProfile, error) {
	log.WithFields(log.Fields{
		"image":    imagePath,
		"question": question,
	}).Info("Answering question")

	payload, err := s.encoder.EncodeForModel(imagePath)
	if err != nil {
		return "", nil, fmt.Errorf("encoding image: %w", err)
	}

	directAnswer, err := s.vision.Answer(ctx, payload, question)
	if err != nil {
		return "", nil, fmt.Errorf("direct answer: %w", err)
	}

	profile, err := s.profile(ctx, payload)
	if err != nil {
		return "", nil, err
	}

	prompt := fmt.Sprintf(answerPromptFormat,
		profile.Caption, profile.Colors, profile.Objects, profile.Scene,
		directAnswer, question)

	answer, err := s.language.Complete(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("composing answer: %w", err)
	}

	log.WithField("image", imagePath).Debug("Question answered")
	return answer, profile, nil
}
