package handlers

import (
	"errors"
	"net/url"
	"strings"
)

const maxQuestionLength = 1000

var (
	ErrEmptyQuestion    = errors.New("question must not be empty")
	ErrQuestionTooLong  = errors.New("question is too long")
	ErrInvalidURL       = errors.New("invalid image URL")
	ErrInvalidImageName = errors.New("invalid image name")
)

// validateQuestion checks that a question is present and reasonably sized.
func validateQuestion(question string) error {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return ErrEmptyQuestion
	}
	if len(trimmed) > maxQuestionLength {
		return ErrQuestionTooLong
	}
	return nil
}

// validateImageURL checks that the value parses as an absolute http(s) URL.
func validateImageURL(rawURL string) error {
	if rawURL == "" {
		return ErrInvalidURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	if parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// validateImageName rejects anything that could escape the temp directory.
func validateImageName(name string) error {
	if name == "" {
		return ErrInvalidImageName
	}
	if strings.ContainsAny(name, "/\\") {
		return ErrInvalidImageName
	}
	if strings.Contains(name, "..") {
		return ErrInvalidImageName
	}
	return nil
}
