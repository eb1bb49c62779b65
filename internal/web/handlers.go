package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/wealth-map/internal/auth"
	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/mapview"
	"github.com/evcraddock/wealth-map/internal/panel"
	"github.com/evcraddock/wealth-map/internal/search"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": s.store.Loaded(),
		"network_search": s.network,
	}, http.StatusOK)
}

// ConfigResponse is what a frontend needs to set up its map.
type ConfigResponse struct {
	Map           mapview.Options `json:"map"`
	FitPadding    int             `json:"fitPadding"`
	FocusZoom     int             `json:"focusZoom"`
	RadiusMiles   float64         `json:"radiusMiles"`
	WealthColors  []string        `json:"wealthColors"`
	MarkerColor   string          `json:"markerColor"`
	NetworkSearch bool            `json:"networkSearch"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, ConfigResponse{
		Map:           MapOptions(s.cfg),
		FitPadding:    s.cfg.Map.FitPadding,
		FocusZoom:     s.cfg.Map.FocusZoom,
		RadiusMiles:   s.cfg.Search.RadiusMiles,
		WealthColors:  s.cfg.UI.WealthColors,
		MarkerColor:   s.cfg.UI.MarkerColor,
		NetworkSearch: s.network,
	}, http.StatusOK)
}

// SearchResponse is the outcome of a search plus what the session now shows.
type SearchResponse struct {
	Session string         `json:"session"`
	Outcome search.Outcome `json:"outcome"`
	Results panel.View     `json:"results"`
	Map     mapview.State  `json:"map"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if r.Method == http.MethodPost {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		query = req.Query
	}

	orch := s.sessions.resolve(w, r)

	// A failed load is retried on the next search.
	if !s.store.Loaded() {
		_, _ = s.store.Load(r.Context())
	}

	out := orch.Search(r.Context(), query)
	sess := orch.Session()
	apiJSON(w, SearchResponse{
		Session: sess.ID,
		Outcome: out,
		Results: sess.Results.View(),
		Map:     sess.MapState(),
	}, http.StatusOK)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var row panel.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	orch := s.sessions.resolve(w, r)
	if err := orch.Focus(row); err != nil {
		switch {
		case errors.Is(err, search.ErrUnknownIndividual):
			apiError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, search.ErrNotFocusable):
			apiError(w, err.Error(), http.StatusBadRequest)
		default:
			apiError(w, fmt.Sprintf("focusing: %v", err), http.StatusInternalServerError)
		}
		return
	}
	apiJSON(w, orch.Session().MapState(), http.StatusOK)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	orch := s.sessions.resolve(w, r)
	apiJSON(w, orch.Session().Results.View(), http.StatusOK)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	orch := s.sessions.resolve(w, r)
	apiJSON(w, orch.Session().MapState(), http.StatusOK)
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var at geo.LatLng
	if err := json.NewDecoder(r.Body).Decode(&at); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if !at.Valid() {
		apiError(w, "lat/lng out of range", http.StatusBadRequest)
		return
	}

	orch := s.sessions.resolve(w, r)
	sess := orch.Session()
	sess.Map.Click(at)
	apiJSON(w, map[string]bool{"details_open": sess.Details.IsOpen()}, http.StatusOK)
}

// IndividualSummary is one row of the individuals listing.
type IndividualSummary struct {
	Name          string `json:"name"`
	NetWorth      string `json:"netWorth"`
	PropertyCount int    `json:"propertyCount"`
}

func (s *Server) handleIndividuals(w http.ResponseWriter, r *http.Request) {
	if !s.ensureDataset(w, r) {
		return
	}
	inds, err := s.store.Individuals()
	if err != nil {
		apiError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	resp := make([]IndividualSummary, len(inds))
	for i, ind := range inds {
		resp[i] = IndividualSummary{Name: ind.Name, NetWorth: ind.NetWorth, PropertyCount: len(ind.Properties)}
	}
	apiJSON(w, resp, http.StatusOK)
}

func (s *Server) handleIndividual(w http.ResponseWriter, r *http.Request) {
	if !s.ensureDataset(w, r) {
		return
	}
	ind, ok := s.store.Individual(r.PathValue("name"))
	if !ok {
		apiError(w, "individual not found", http.StatusNotFound)
		return
	}
	apiJSON(w, ind, http.StatusOK)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if owner == "" || address == "" {
		apiError(w, "owner and address are required", http.StatusBadRequest)
		return
	}
	if !s.ensureDataset(w, r) {
		return
	}

	orch := s.sessions.resolve(w, r)
	details, err := orch.ShowDetails(r.Context(), owner, address)
	if errors.Is(err, search.ErrPropertyNotFound) {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("loading details: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, details, http.StatusOK)
}

func (s *Server) handleCloseDetails(w http.ResponseWriter, r *http.Request) {
	if orch, ok := s.sessions.lookup(r); ok {
		orch.CloseDetails()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.Recent(r.Context(), requestSessionID(r))
	if err != nil {
		apiError(w, fmt.Sprintf("listing history: %v", err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = make([]*history.Entry, 0)
	}
	apiJSON(w, entries, http.StatusOK)
}

// handleHistoryEntry returns one search of the caller's session.
func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) || (err == nil && e.SessionID != requestSessionID(r)) {
		apiError(w, "search not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("getting search: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, e, http.StatusOK)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.history.Clear(r.Context(), requestSessionID(r))
	if err != nil {
		apiError(w, fmt.Sprintf("clearing history: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, map[string]int64{"cleared": n}, http.StatusOK)
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.history.RecentViews(r.Context(), requestSessionID(r))
	if err != nil {
		apiError(w, fmt.Sprintf("listing views: %v", err), http.StatusInternalServerError)
		return
	}
	if views == nil {
		views = make([]*history.View, 0)
	}
	apiJSON(w, views, http.StatusOK)
}

// KeyCreateResponse carries the raw key, shown once.
type KeyCreateResponse struct {
	Key    string      `json:"key"`
	APIKey auth.APIKey `json:"api_key"`
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = "API Key"
	}

	rawKey, key, err := s.apiKeys.Create(name)
	if err != nil {
		slog.Error("creating api key", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}
	apiJSON(w, KeyCreateResponse{Key: rawKey, APIKey: *key}, http.StatusCreated)
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.apiKeys.List()
	if err != nil {
		slog.Error("listing api keys", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = make([]auth.APIKey, 0)
	}
	apiJSON(w, keys, http.StatusOK)
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		apiError(w, "invalid key ID", http.StatusBadRequest)
		return
	}

	if err := s.apiKeys.Delete(id); err != nil {
		if errors.Is(err, auth.ErrKeyNotFound) {
			apiError(w, "key not found", http.StatusNotFound)
			return
		}
		slog.Error("deleting api key", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ensureDataset loads the dataset if needed and reports 503 when it is
// unavailable.
func (s *Server) ensureDataset(w http.ResponseWriter, r *http.Request) bool {
	if s.store.Loaded() {
		return true
	}
	if _, err := s.store.Load(r.Context()); err != nil {
		apiError(w, dataset.ErrNotLoaded.Error(), http.StatusServiceUnavailable)
		return false
	}
	return true
}
