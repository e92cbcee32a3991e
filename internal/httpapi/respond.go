package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/pawonsalam/restosuite/internal/logger"
)

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.GetLogger().Warnw("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

// respondServerError logs the cause and answers with a user-facing message.
func respondServerError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger.GetLogger().Errorw("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r.Context()),
		"error", err,
	)
	respondError(w, http.StatusInternalServerError, message)
}

const maxBodyBytes = 16 << 20 // inline images travel in JSON bodies

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
