package generate

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

// GenerateResponse is the success body of POST /generate.
type GenerateResponse struct {
	Tweet string `json:"tweet"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: &APIError{Code: code, Message: message},
	})
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "OK")
}

func (r *router) handleGenerate(w http.ResponseWriter, req *http.Request) {
	var body GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, r.limit))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be a JSON object with text and sentiment")
		return
	}

	tweet, err := r.svc.Generate(req.Context(), body.Text, body.Sentiment)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		r.logger.Error("generate tweet failed",
			"request_id", req.Header.Get(RequestIDHeader),
			"error", err,
		)
		writeError(w, http.StatusBadGateway, "provider_error", err.Error())
		return
	}

	r.logger.Debug("generated tweet",
		"request_id", req.Header.Get(RequestIDHeader),
		"sentiment", body.Sentiment,
	)
	writeJSON(w, http.StatusOK, GenerateResponse{Tweet: tweet})
}
