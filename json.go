package main

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondWithError writes {"error": msg}. Server faults are logged as errors;
// client mistakes only at debug level since they are expected traffic.
func (cfg *apiConfig) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	switch {
	case code >= http.StatusInternalServerError:
		cfg.logger.Error(msg, "status", code, "error", err)
	case err != nil:
		cfg.logger.Debug(msg, "status", code, "error", err)
	}
	cfg.respondWithJSON(w, code, errorResponse{Error: msg})
}

// respondWithJSON writes payload with the given status and marks it
// uncacheable.
func (cfg *apiConfig) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		cfg.logger.Error("could not encode response", "status", code, "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		cfg.logger.Warn("could not write response", "error", err)
	}
}
