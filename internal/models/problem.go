package models

import (
	"encoding/json"
	"net/http"
)

// WriteProblem emits an application/problem+json body (RFC 7807 subset).
func WriteProblem(w http.ResponseWriter, status int, title, detail string, extra map[string]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	body := map[string]any{
		"status": status,
		"title":  title,
		"detail": detail,
	}
	for k, v := range extra {
		body[k] = v
	}
	_ = json.NewEncoder(w).Encode(body)
}
