package devices

import (
	"encoding/json"
	"net/http"
	"strconv"

	"haspd/internal/logs"
	"haspd/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct{ svc *Service }

func NewHTTP(s *Service) *HTTP { return &HTTP{svc: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/ha/devices", h.listDevices).Methods(http.MethodGet)
	r.HandleFunc("/api/ha/devices/resolutions", h.listResolutions).Methods(http.MethodGet)
	r.HandleFunc("/api/ha/devices/resolution/{model}", h.getResolution).Methods(http.MethodGet)
	r.HandleFunc("/api/ha/validate/entity", h.validateEntity).Methods(http.MethodPost)
	r.HandleFunc("/api/ha/validate/coordinates", h.validateCoordinates).Methods(http.MethodPost)
}

func (h *HTTP) listDevices(w http.ResponseWriter, r *http.Request) {
	devs, err := h.svc.OpenhaspDevices(r.Context())
	if err != nil {
		logs.Logger.Errorf("list devices: %v", err)
		models.WriteProblem(w, http.StatusBadGateway, "Home Assistant unreachable", err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(devs)
}

func (h *HTTP) listResolutions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Catalog)
}

func (h *HTTP) getResolution(w http.ResponseWriter, r *http.Request) {
	model := mux.Vars(r)["model"]
	res, ok := GetResolution(model)
	if !ok {
		models.WriteProblem(w, http.StatusNotFound, "Not found",
			"unknown device model: "+model, map[string]string{"model": model})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

// POST /api/ha/validate/entity?entity_id=light.living_room
func (h *HTTP) validateEntity(w http.ResponseWriter, r *http.Request) {
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		http.Error(w, "entity_id query param required", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if ok, reason := h.svc.ValidateEntityExists(r.Context(), entityID); !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{"valid": false, "error": reason})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"valid": true})
}

// POST /api/ha/validate/coordinates?x=&y=&width=&height=&device_width=&device_height=
func (h *HTTP) validateCoordinates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vals := map[string]int{}
	for _, key := range []string{"x", "y", "width", "height", "device_width", "device_height"} {
		n, err := strconv.Atoi(q.Get(key))
		if err != nil {
			http.Error(w, key+" query param required (int)", http.StatusBadRequest)
			return
		}
		vals[key] = n
	}
	w.Header().Set("Content-Type", "application/json")
	ok, reason := ValidateCoordinates(
		vals["x"], vals["y"], vals["width"], vals["height"],
		vals["device_width"], vals["device_height"],
	)
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{"valid": false, "error": reason})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"valid": true})
}
