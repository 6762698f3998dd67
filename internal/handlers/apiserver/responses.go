package apiserver

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the generic error body for API failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSONResponse sends a JSON response with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		// Headers are out already; an encode failure here cannot be
		// reported to the client.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeJSONError sends a JSON-formatted error response.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message})
}
