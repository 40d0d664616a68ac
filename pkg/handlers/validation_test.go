package handlers

import (
	"strings"
	"testing"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		wantErr  bool
	}{
		{name: "valid question", question: "What is in this image?", wantErr: false},
		{name: "empty", question: "", wantErr: true},
		{name: "whitespace only", question: "   \t ", wantErr: true},
		{name: "too long", question: strings.Repeat("a", maxQuestionLength+1), wantErr: true},
		{name: "at limit", question: strings.Repeat("a", maxQuestionLength), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestion(tt.question)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateQuestion(%q) error = %v, wantErr %v", tt.question, err, tt.wantErr)
			}
		})
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid http", url: "http://example.com/cat.jpg", wantErr: false},
		{name: "valid https", url: "https://example.com/cat.jpg", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "no scheme", url: "example.com/cat.jpg", wantErr: true},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateImageURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateImageURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		name      string
		imageName string
		wantErr   bool
	}{
		{name: "plain name", imageName: "abc123.jpg", wantErr: false},
		{name: "empty", imageName: "", wantErr: true},
		{name: "path separator", imageName: "sub/abc.jpg", wantErr: true},
		{name: "backslash", imageName: "sub\\abc.jpg", wantErr: true},
		{name: "traversal", imageName: "..abc.jpg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateImageName(tt.imageName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateImageName(%q) error = %v, wantErr %v", tt.imageName, err, tt.wantErr)
			}
		})
	}
}
