package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"snatcher/internal/core"
	"snatcher/internal/database/models"
	"snatcher/internal/providers"
	"snatcher/internal/utils"
)

// Backend is the part of core.Manager the API drives.
type Backend interface {
	Providers() []*providers.Provider
	Search(ctx context.Context, req core.SearchRequest) ([]*providers.SearchResult, error)
	SnatchBest(ctx context.Context, results []*providers.SearchResult) (*providers.SearchResult, error)
	FindPropers(ctx context.Context, since time.Time) []providers.ProperCandidate
	RefreshCaches(ctx context.Context) error
	History(ctx context.Context, limit int) ([]models.Snatch, error)
	TestNotifiers() error
	Events() *core.EventHub
}

type APIHandler struct {
	backend Backend
	logger  *utils.Logger
}

type providerStatus struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Image string `json:"image"`
}

type resultView struct {
	Name     string     `json:"name"`
	URL      string     `json:"url"`
	Provider string     `json:"provider"`
	Kind     string     `json:"kind"`
	Quality  string     `json:"quality"`
	Group    string     `json:"group,omitempty"`
	Proper   bool       `json:"proper"`
	Size     int64      `json:"size,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

type searchResponse struct {
	Results  []resultView `json:"results"`
	Snatched *resultView  `json:"snatched,omitempty"`
}

// A helper function to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to respond with a JSON error
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func NewAPIHandler(backend Backend, logger *utils.Logger) *APIHandler {
	return &APIHandler{backend: backend, logger: logger}
}

func viewOf(r *providers.SearchResult) resultView {
	v := resultView{
		Name:    r.Name,
		URL:     r.URL,
		Kind:    r.Kind.String(),
		Quality: r.Quality.String(),
		Group:   r.ReleaseGroup,
		Proper:  r.IsProper,
		Size:    r.Size,
	}
	if !r.PublishedAt.IsZero() {
		published := r.PublishedAt
		v.Date = &published
	}
	if r.Provider != nil {
		v.Provider = r.Provider.Name()
	}
	return v
}

func (h *APIHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	statuses := []providerStatus{}
	for _, p := range h.backend.Providers() {
		statuses = append(statuses, providerStatus{
			ID:    p.ID(),
			Name:  p.Name(),
			Kind:  p.Kind().String(),
			Image: p.ImageName(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"providers": statuses})
}

func (h *APIHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	history, err := h.backend.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load history:", err)
		respondError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if history == nil {
		history = []models.Snatch{}
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *APIHandler) GetPropers(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid since date, expected YYYY-MM-DD")
			return
		}
		since = parsed
	}
	respondJSON(w, http.StatusOK, h.backend.FindPropers(r.Context(), since))
}

func (h *APIHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req core.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.backend.Search(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := searchResponse{Results: make([]resultView, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, viewOf(res))
	}

	if req.Snatch && len(results) > 0 {
		best, err := h.backend.SnatchBest(r.Context(), results)
		if err != nil {
			h.logger.Error("Snatch failed for", req.Show, ":", err)
			respondJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":   err.Error(),
				"results": resp.Results,
			})
			return
		}
		view := viewOf(best)
		resp.Snatched = &view
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) RefreshCaches(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.RefreshCaches(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *APIHandler) TestNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.TestNotifiers(); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
