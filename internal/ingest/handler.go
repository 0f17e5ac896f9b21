package ingest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handler exposes Service and Pipeline over HTTP, mirroring the
// teacher's drive.Handler route shape.
type Handler struct {
	service  *Service
	pipeline *Pipeline
}

// NewHandler builds a Handler.
func NewHandler(service *Service, pipeline *Pipeline) *Handler {
	return &Handler{service: service, pipeline: pipeline}
}

// RegisterRoutes wires the ingest trigger API onto router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ingest/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/ingest/grn", h.IngestGRN).Methods(http.MethodPost)
}

// ListFiles lists the feed files available under a Drive folder,
// addressed by id (?folderId=) or path (?path=).
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")

	if path := query.Get("path"); path != "" {
		resolved, err := h.service.FindFolderByPath(path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		folderID = resolved
	}

	files, err := h.service.ListFiles(folderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

type ingestGRNRequest struct {
	FileID  string    `json:"file_id"`
	StoreID uuid.UUID `json:"store_id"`
	VATRate *float64  `json:"vat_rate,omitempty"`
}

// IngestGRN triggers ingestion of a single Drive-hosted feed file.
func (h *Handler) IngestGRN(w http.ResponseWriter, r *http.Request) {
	var req ingestGRNRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FileID == "" || req.StoreID == uuid.Nil {
		http.Error(w, "file_id and store_id are required", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.IngestFile(r.Context(), req.FileID, req.StoreID, req.VATRate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}
