package ha

import (
	"encoding/json"
	"errors"
	"net/http"

	"haspd/internal/logs"
	"haspd/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct{ client *Client }

func NewHTTP(c *Client) *HTTP { return &HTTP{client: c} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/ha/entities", h.listEntities).Methods(http.MethodGet)
	r.HandleFunc("/api/ha/reload", h.reloadPages).Methods(http.MethodPost)
	r.HandleFunc("/api/entities/states", h.batchStates).Methods(http.MethodPost)
	r.HandleFunc("/api/entities/{entity_id}/state", h.entityState).Methods(http.MethodGet)
}

// GET /api/ha/entities?type=light&search=living
func (h *HTTP) listEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.client.States(r.Context())
	if err != nil {
		logs.Logger.Errorf("list entities: %v", err)
		models.WriteProblem(w, http.StatusBadGateway, "Home Assistant unreachable", err.Error(), nil)
		return
	}
	entities = Filter(entities, r.URL.Query().Get("type"), r.URL.Query().Get("search"))
	out := make([]EnhancedEntity, 0, len(entities))
	for _, e := range entities {
		out = append(out, Enhance(e))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *HTTP) reloadPages(w http.ResponseWriter, r *http.Request) {
	if err := h.client.ReloadPages(r.Context()); err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Reload failed", err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "Pages reloaded"})
}

// GET /api/entities/{entity_id}/state
func (h *HTTP) entityState(w http.ResponseWriter, r *http.Request) {
	entityID := mux.Vars(r)["entity_id"]
	e, err := h.client.EntityState(r.Context(), entityID)
	if err != nil {
		status := http.StatusNotFound
		if !errors.Is(err, ErrEntityNotFound) {
			logs.Logger.Errorf("entity state %s: %v", entityID, err)
		}
		models.WriteProblem(w, status, "Not found",
			"entity "+entityID+" not found or unavailable", map[string]string{"entity_id": entityID})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"entity_id":    entityID,
		"state":        e.State,
		"attributes":   e.Attributes,
		"last_updated": e.LastUpdated,
		"last_changed": e.LastChanged,
	})
}

// POST /api/entities/states {"entity_ids": [...]}
// Unavailable entities come back marked, never as a request failure.
func (h *HTTP) batchStates(w http.ResponseWriter, r *http.Request) {
	var in struct {
		EntityIDs []string `json:"entity_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	out := make(map[string]map[string]any, len(in.EntityIDs))
	for _, id := range in.EntityIDs {
		e, err := h.client.EntityState(r.Context(), id)
		if err != nil {
			out[id] = map[string]any{"state": "unavailable", "attributes": map[string]any{}, "available": false}
			continue
		}
		out[id] = map[string]any{"state": e.State, "attributes": e.Attributes, "available": true}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
