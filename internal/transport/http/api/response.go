package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// DecodeJSON reads the request body into dst. On failure it writes a 400,
// or a 413 when the body limit was hit, and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request payload too large", requestID)
			return false
		}
		Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}
	return true
}

// Attachment writes body as a downloadable file.
func Attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Warn("write attachment failed", "filename", filename, "err", err)
	}
}
