package publish

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type HTTP struct{ pub *Publisher }

func NewHTTP(p *Publisher) *HTTP { return &HTTP{pub: p} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/config/publish", h.publish).Methods(http.MethodPost)
}

func (h *HTTP) publish(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		http.Error(w, "device_id required", http.StatusBadRequest)
		return
	}
	res := h.pub.Publish(r.Context(), req)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}
