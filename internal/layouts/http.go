package layouts

import (
	"encoding/json"
	"net/http"
	"strings"

	"haspd/internal/designer"
	"haspd/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct{ store Store }

func NewHTTP(s Store) *HTTP { return &HTTP{store: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	// quick (autosave) slot
	r.HandleFunc("/api/config/layout", h.saveQuick).Methods(http.MethodPost)
	r.HandleFunc("/api/config/layout", h.loadQuick).Methods(http.MethodGet)

	// named layouts
	r.HandleFunc("/api/config/layouts", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/config/layouts", h.save).Methods(http.MethodPost)
	r.HandleFunc("/api/config/layouts/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/config/layouts/{id}", h.delete).Methods(http.MethodDelete)
}

func (h *HTTP) saveQuick(w http.ResponseWriter, r *http.Request) {
	var objects []designer.Object
	if err := json.NewDecoder(r.Body).Decode(&objects); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.store.SaveQuick(objects); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "Layout saved"})
}

func (h *HTTP) loadQuick(w http.ResponseWriter, _ *http.Request) {
	objects, err := h.store.LoadQuick()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(objects)
}

func (h *HTTP) list(w http.ResponseWriter, _ *http.Request) {
	ls, err := h.store.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ls)
}

func (h *HTTP) save(w http.ResponseWriter, r *http.Request) {
	var l designer.LayoutDoc
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(l.Name) == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	saved, err := h.store.Save(l)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(saved)
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	l, err := h.store.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if l == nil {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "layout not found", map[string]string{"id": id})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(l)
}

func (h *HTTP) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"deleted": deleted})
}
