package middleware

import (
	"encoding/json"
	"net/http"
	apperrors "tms/pkg/errors"
	httputil "tms/pkg/http"
)

// writeError answers before a handler runs, in the same body shape handlers
// use for AppErrors.
func writeError(w http.ResponseWriter, status int, code apperrors.Code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(httputil.ErrorResponse{Code: code, Error: message})
}
