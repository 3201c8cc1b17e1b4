package hayaml

import (
	"encoding/json"
	"net/http"
	"strings"

	"haspd/internal/designer"

	"github.com/gorilla/mux"
)

type HTTP struct{}

func NewHTTP() *HTTP { return &HTTP{} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/config/yaml", h.generate).Methods(http.MethodPost)
}

func (h *HTTP) generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Objects  []designer.Object `json:"objects"`
		DeviceID string            `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		http.Error(w, "device_id required", http.StatusBadRequest)
		return
	}

	content, err := Generate(req.Objects, req.DeviceID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":        true,
		"yaml":           content,
		"device_id":      req.DeviceID,
		"suggested_path": SuggestedPath(req.DeviceID),
	})
}
