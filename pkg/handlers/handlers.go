package handlers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/itiroinazawa/image-vqa-agent/pkg/errors"
	"github.com/itiroinazawa/image-vqa-agent/pkg/models"
)

//go:embed index.html
var indexPage []byte

const defaultHistoryLimit = 20

// AppService is the surface the handlers need from the application layer.
type AppService interface {
	AnswerFromUpload(ctx context.Context, image []byte, question string) (*models.Exchange, error)
	AnswerFromURL(ctx context.Context, url, question string) (*models.Exchange, error)
	History(limit int) ([]*models.Exchange, error)
	HistoryStats() (*models.HistoryStats, error)
	ResolveImage(name string) (string, error)
	HealthCheck(ctx context.Context) (string, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	app           AppService
	maxUploadSize int64
}

func NewHandler(app AppService, maxUploadSize int64) *Handler {
	return &Handler{
		app:           app,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if name, ok := strings.CutPrefix(r.URL.Path, "/images/"); ok {
		h.handleImage(w, r, name)
		return
	}

	switch r.URL.Path {
	case "/":
		h.handleIndex(w, r)
	case "/api/upload":
		h.handleUpload(w, r)
	case "/api/url":
		h.handleURL(w, r)
	case "/api/history":
		h.handleHistory(w, r)
	case "/api/history/stats":
		h.handleHistoryStats(w, r)
	case "/health":
		h.handleHealth(w, r)
	default:
		h.writeErrorResponse(w, http.StatusNotFound, "Not found", "The requested endpoint does not exist")
	}
}

// Router wraps the handler with the middleware chain.
func (h *Handler) Router() http.Handler {
	return corsMiddleware(apiKeyMiddleware(h.ServeHTTP))
}

// AnswerResponse mirrors the answer payload served to clients.
type AnswerResponse struct {
	Answer    string `json:"answer"`
	ImagePath string `json:"image_path"`
}

// ImageURLRequest is the body of POST /api/url.
type ImageURLRequest struct {
	URL      string `json:"url"`
	Question string `json:"question"`
}

// ResponseError represents an error response
type ResponseError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ResponseSuccess represents a success response
type ResponseSuccess struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *Handler) writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func (h *Handler) writeErrorResponse(w http.ResponseWriter, status int, message, details string) {
	response := ResponseError{
		Error:   message,
		Message: details,
	}
	h.writeJSONResponse(w, status, response)
}

func (h *Handler) writeSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	response := ResponseSuccess{
		Message: message,
		Data:    data,
	}
	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeAnswerError maps pipeline errors to status codes.
func (h *Handler) writeAnswerError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsInvalidInput(err):
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid image", err.Error())
	case apperrors.IsRetryable(err):
		h.writeErrorResponse(w, http.StatusBadGateway, "Inference backend unavailable", err.Error())
	default:
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to answer question", err.Error())
	}
}

// handleIndex serves the embedded upload page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET requests are allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(indexPage); err != nil {
		log.WithError(err).Error("Failed to write index page")
	}
}

// handleUpload answers a question about an uploaded image.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only POST requests are allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid upload", fmt.Sprintf("Failed to parse multipart form: %v", err))
		return
	}

	question := r.FormValue("question")
	if err := validateQuestion(question); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Missing parameter", "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid upload", fmt.Sprintf("Failed to read image: %v", err))
		return
	}

	exchange, err := h.app.AnswerFromUpload(r.Context(), data, question)
	if err != nil {
		log.WithError(err).Error("Failed to process upload")
		h.writeAnswerError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, AnswerResponse{
		Answer:    exchange.Answer,
		ImagePath: exchange.ImagePath,
	})
}

// handleURL answers a question about an image behind a URL.
func (h *Handler) handleURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only POST requests are allowed")
		return
	}

	var request ImageURLRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", fmt.Sprintf("Failed to parse request body: %v", err))
		return
	}
	defer r.Body.Close()

	if err := validateQuestion(request.Question); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}
	if err := validateImageURL(request.URL); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}

	exchange, err := h.app.AnswerFromURL(r.Context(), request.URL, request.Question)
	if err != nil {
		log.WithError(err).WithField("url", request.URL).Error("Failed to process URL")
		h.writeAnswerError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, AnswerResponse{
		Answer:    exchange.Answer,
		ImagePath: exchange.ImagePath,
	})
}

// handleImage serves a stored temp image by filename.
func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET requests are allowed")
		return
	}

	if err := validateImageName(name); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}

	path, err := h.app.ResolveImage(name)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Image not found", fmt.Sprintf("No stored image named %s", name))
		return
	}

	http.ServeFile(w, r, path)
}

// handleHistory lists recent exchanges.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET requests are allowed")
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid parameter", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	exchanges, err := h.app.History(limit)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to get history", err.Error())
		return
	}

	h.writeSuccessResponse(w, "History retrieved successfully", exchanges)
}

// handleHistoryStats reports aggregate exchange counts.
func (h *Handler) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET requests are allowed")
		return
	}

	stats, err := h.app.HistoryStats()
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to get history stats", err.Error())
		return
	}

	h.writeSuccessResponse(w, "History statistics retrieved successfully", stats)
}

// handleHealth reports liveness and backend reachability.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET requests are allowed")
		return
	}

	status := map[string]string{"status": "ok"}
	version, err := h.app.HealthCheck(r.Context())
	if err != nil {
		status["backend"] = "unreachable"
	} else {
		status["backend"] = version
	}

	h.writeJSONResponse(w, http.StatusOK, status)
}
