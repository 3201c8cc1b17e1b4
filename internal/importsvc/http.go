package importsvc

import (
	"encoding/json"
	"net/http"

	"haspd/internal/designer"
	"haspd/internal/logs"
	"haspd/internal/models"
	"haspd/internal/validate"

	"github.com/gorilla/mux"
)

type ImportRequest struct {
	Source           string `json:"source"`    // "file" | "device"
	Content          string `json:"content"`   // JSONL body when source=file
	DeviceID         string `json:"device_id"` // when source=device
	ValidateEntities bool   `json:"validate_entities"`
	Mode             string `json:"mode"` // "replace" | "merge" (client-side concern, echoed back)
}

type ImportResult struct {
	Success    bool              `json:"success"`
	Objects    []designer.Object `json:"objects"`
	Metadata   designer.Metadata `json:"metadata"`
	Validation map[string]any    `json:"validation,omitempty"`
	Warnings   []string          `json:"warnings"`
}

type HTTP struct {
	svc       *Service
	validator *validate.Service
}

func NewHTTP(s *Service, v *validate.Service) *HTTP {
	return &HTTP{svc: s, validator: v}
}

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/config/import/available", h.listAvailable).Methods(http.MethodGet)
	r.HandleFunc("/api/config/import/device/{device_id}", h.importDevice).Methods(http.MethodGet)
	r.HandleFunc("/api/config/import", h.importContent).Methods(http.MethodPost)
	r.HandleFunc("/api/config/import", h.importLegacy).Methods(http.MethodGet)
}

func (h *HTTP) listAvailable(w http.ResponseWriter, _ *http.Request) {
	files, err := h.svc.ListAvailable()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(files)
}

// POST /api/config/import — parse uploaded JSONL content. A validator
// outage degrades to a warning, imports must not depend on HA being up.
func (h *HTTP) importContent(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var records []map[string]any
	switch {
	case req.Source == "file" && req.Content != "":
		records = designer.Parse(req.Content)
	case req.Source == "device" && req.DeviceID != "":
		layout, _, err := h.svc.ImportForDevice(req.DeviceID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if layout == nil {
			models.WriteProblem(w, http.StatusNotFound, "Not found",
				"no configuration found for device "+req.DeviceID, nil)
			return
		}
		h.respond(w, r, req, designer.Flatten(layout.Pages), designer.Metadata{ProjectName: layout.Name, PageSize: "large_portrait"})
		return
	default:
		http.Error(w, "must provide either 'content' (for file) or 'device_id' (for device)", http.StatusBadRequest)
		return
	}

	objects := designer.ObjectsFromRecords(records)
	h.respond(w, r, req, objects, designer.ExtractMetadata(records))
}

func (h *HTTP) respond(w http.ResponseWriter, r *http.Request, req ImportRequest, objects []designer.Object, meta designer.Metadata) {
	result := ImportResult{
		Success:  true,
		Objects:  objects,
		Metadata: meta,
		Warnings: []string{},
		Validation: map[string]any{
			"passed": true, "errors": []validate.Error{}, "warnings": []validate.Warning{},
		},
	}

	if req.ValidateEntities {
		opts := validate.Options{ValidateEntities: true}
		vr := h.validator.Configuration(r.Context(), objects, req.DeviceID, opts)
		result.Validation = map[string]any{
			"passed": vr.Passed, "errors": vr.Errors, "warnings": vr.Warnings,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// GET /api/config/import/device/{device_id}
func (h *HTTP) importDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["device_id"]
	layout, filename, err := h.svc.ImportForDevice(deviceID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if layout == nil {
		models.WriteProblem(w, http.StatusNotFound, "Not found",
			"no configuration found for device "+deviceID, map[string]string{"device_id": deviceID})
		return
	}
	logs.Logger.Infof("found config for %s in %s", deviceID, filename)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":   true,
		"device_id": deviceID,
		"objects":   designer.Flatten(layout.Pages),
		"metadata": map[string]string{
			"project_name": layout.Name,
			"page_size":    "medium_portrait",
		},
	})
}

// GET /api/config/import — legacy pages view of pages.jsonl.
func (h *HTTP) importLegacy(w http.ResponseWriter, _ *http.Request) {
	layout, err := h.svc.ImportFile("pages.jsonl")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if layout == nil {
		_ = json.NewEncoder(w).Encode([]designer.Page{})
		return
	}
	_ = json.NewEncoder(w).Encode(layout.Pages)
}
