// Package respond writes JSON responses for the HTTP handlers.
package respond

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// CatalogUnavailable is the reply of every catalog-backed route when the
// startup load failed.
func CatalogUnavailable(w http.ResponseWriter) {
	Error(w, http.StatusServiceUnavailable, "Catalog data unavailable")
}
