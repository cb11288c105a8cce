package utils

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// FieldErrors reports a form-scoped rejection with one message per field.
func FieldErrors(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	JSON(w, status, map[string]any{"error": msg, "fields": fields})
}
