package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/therealutkarshpriyadarshi/vamana/pkg/vamana"
)

// Handler wraps the in-process vamana service and provides HTTP handlers.
type Handler struct {
	service *Service
}

// NewHandler creates a new REST API handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HealthCheck handles GET /v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"ready":  h.service.Ready(),
	}, http.StatusOK)
}

// loadDatasetRequest is the body of POST /v1/dataset
type loadDatasetRequest struct {
	BasePath  string `json:"base_path"`
	QueryPath string `json:"query_path"`
	Dimensions int   `json:"dimensions"`
	NBase     int    `json:"n_base"`
	NQuery    int    `json:"n_query"`
}

// LoadDataset handles POST /v1/dataset
func (h *Handler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loadDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.service.LoadDataset(req.BasePath, req.QueryPath, req.Dimensions, req.NBase, req.NQuery); err != nil {
		writeVamanaError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "loaded"}, http.StatusOK)
}

// buildRequest is the body of POST /v1/build
type buildRequest struct {
	Algorithm string  `json:"algorithm"` // "filtered" or "stitched"
	Alpha     float64 `json:"alpha"`
	R         int     `json:"r"`
	RSmall    int     `json:"r_small"`
	RStitched int     `json:"r_stitched"`
	L         int     `json:"l"`
	Tau       int     `json:"tau"`
}

// Build handles POST /v1/build
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	var err error
	switch req.Algorithm {
	case "stitched":
		err = h.service.BuildStitched(vamana.StitchedBuildParams{
			RSmall:    req.RSmall,
			RStitched: req.RStitched,
			L:         req.L,
			Alpha:     float32(req.Alpha),
			Tau:       req.Tau,
		})
	case "filtered", "":
		err = h.service.BuildFiltered(vamana.BuildParams{
			R:     req.R,
			L:     req.L,
			Alpha: float32(req.Alpha),
			Tau:   req.Tau,
		})
	default:
		writeError(w, fmt.Sprintf("unknown algorithm %q", req.Algorithm), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeVamanaError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "built"}, http.StatusOK)
}

// Search handles POST /v1/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.K == 0 {
		req.K = ParseIntQuery(r, "k", 10)
	}

	resp, err := h.service.Search(req)
	if err != nil {
		writeVamanaError(w, err)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// graphFileRequest is the body of the graph load/save endpoints.
type graphFileRequest struct {
	Path string `json:"path"`
	Tau  int    `json:"tau"`
}

// LoadGraph handles POST /v1/graph/load
func (h *Handler) LoadGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req graphFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Tau == 0 {
		req.Tau = 1
	}

	if err := h.service.LoadGraph(req.Path, req.Tau); err != nil {
		writeVamanaError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "loaded"}, http.StatusOK)
}

// SaveGraph handles POST /v1/graph/save
func (h *Handler) SaveGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req graphFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.service.SaveGraph(req.Path); err != nil {
		writeVamanaError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "saved"}, http.StatusOK)
}

// writeVamanaError maps a vamana error kind to an HTTP status code.
func writeVamanaError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch err.(type) {
	case *vamana.ShapeError, *vamana.InvalidVertexError, *vamana.SelfLoopError:
		status = http.StatusBadRequest
	case *vamana.NoMedoidError:
		status = http.StatusNotFound
	case *vamana.IoError:
		status = http.StatusInternalServerError
	}
	writeError(w, err.Error(), status)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ParseIntQuery parses an integer query parameter
func ParseIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
