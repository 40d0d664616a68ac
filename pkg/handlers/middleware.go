package handlers

import (
	"net/http"
	"os"
)

// corsMiddleware allows browser clients on any origin to call the API.
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// apiKeyMiddleware provides simple API key authentication
func apiKeyMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check and the landing page
		if r.URL.Path == "/health" || r.URL.Path == "/" {
			next(w, r)
			return
		}

		// Get API key from environment
		apiKey := os.Getenv("VQA_API_KEY")
		if apiKey == "" {
			// If no API key is configured, allow access
			next(w, r)
			return
		}

		// Check Authorization header
		authHeader := r.Header.Get("Authorization")
		expectedHeader := "Bearer " + apiKey

		if authHeader != expectedHeader {
			// Check X-API-Key header as alternative
			if r.Header.Get("X-API-Key") != apiKey {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"Invalid or missing API key"}`))
				return
			}
		}

		next(w, r)
	}
}
