package handlers

import (
	"encoding/json"
	"net/http"
)

// ApiResponse is the envelope of every JSON response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Cached  *bool  `json:"cached,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, ApiResponse{
		Success: false,
		Error:   message,
		Code:    errorCode,
	})
}

// ErrorResponseWithDetails is ErrorResponse plus a details string for the client.
func ErrorResponseWithDetails(w http.ResponseWriter, statusCode int, errorCode, message, details string) error {
	return WriteJSON(w, statusCode, ApiResponse{
		Success: false,
		Error:   message,
		Code:    errorCode,
		Details: details,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
