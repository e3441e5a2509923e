package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"clicktap-chat/internal/models"
	"clicktap-chat/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := services.Classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("✗ %s %s failed (request_id=%s): %v", r.Method, r.URL.Path, r.Header.Get("X-Request-ID"), err)
	}
	writeJSON(w, status, errorResp(message))
}

// Health reports liveness only; it does not probe the upstream.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
