package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError emits the API error envelope from middleware, matching the shape
// the handlers package produces.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
