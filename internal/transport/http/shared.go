package httptransport

import (
	"encoding/json"
	"net/http"

	derrors "hauntedlights/pkg/domain-errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	writeJSON(w, derrors.ToHTTPStatus(code), map[string]any{
		"success": false,
		"error":   derrors.MessageOf(err),
	})
}
