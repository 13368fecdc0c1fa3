// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the search, catalog, and library services over HTTP.
// Implements: prd001-search (R5), prd002-catalog (R4), prd003-library (R6);
//
//	docs/ARCHITECTURE § HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openstream/openstream/pkg/types"
)

// Searcher runs one aggregated search and returns a result page.
type Searcher interface {
	Search(ctx context.Context, query string, start, rows int) (*types.SearchResultPage, error)
}

// Catalog resolves one archive item into its album view.
type Catalog interface {
	AlbumDetail(ctx context.Context, identifier string) (*types.Album, error)
}

// Library manages playlists and favorites.
type Library interface {
	CreatePlaylist(ctx context.Context, name, description string) (*types.Playlist, error)
	ListPlaylists(ctx context.Context) ([]types.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (*types.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	AddTrack(ctx context.Context, playlistID string, track types.Track) error
	RemoveTrack(ctx context.Context, playlistID, identifier string) error
	SetFavorite(ctx context.Context, fav types.Favorite) error
	Unfavorite(ctx context.Context, identifier string) error
	ListFavorites(ctx context.Context) ([]types.Favorite, error)
}

// Server wires the services into an http.Handler.
type Server struct {
	searcher Searcher
	catalog  Catalog
	library  Library
	logger   *log.Logger
}

// NewServer creates a Server over the given services.
func NewServer(searcher Searcher, catalog Catalog, library Library, logger *log.Logger) *Server {
	return &Server{
		searcher: searcher,
		catalog:  catalog,
		library:  library,
		logger:   logger,
	}
}

// Handler returns the routed handler with logging and CORS middleware
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /track/{identifier}", s.handleTrackDetail)

	mux.HandleFunc("POST /playlists", s.handleCreatePlaylist)
	mux.HandleFunc("GET /playlists", s.handleListPlaylists)
	mux.HandleFunc("GET /playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("DELETE /playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("POST /playlists/{id}/tracks", s.handleAddTrack)
	mux.HandleFunc("DELETE /playlists/{id}/tracks", s.handleRemoveTrack)

	mux.HandleFunc("GET /favorites", s.handleListFavorites)
	mux.HandleFunc("PUT /favorites", s.handleSetFavorite)
	mux.HandleFunc("DELETE /favorites", s.handleUnfavorite)

	return s.withLogging(withCORS(mux))
}

// withLogging logs one line per request with method, path, and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(startTime),
		)
	})
}

// withCORS allows browser clients on other origins to call the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	start := intParam(r, "start", 0)
	rows := intParam(r, "rows", 0)

	page, err := s.searcher.Search(r.Context(), q, start, rows)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response": page})
}

func (s *Server) handleTrackDetail(w http.ResponseWriter, r *http.Request) {
	album, err := s.catalog.AlbumDetail(r.Context(), r.PathValue("identifier"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.Join(types.ErrInvalidQuery, err))
		return
	}

	playlist, err := s.library.CreatePlaylist(r.Context(), body.Name, body.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.library.ListPlaylists(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.library.GetPlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeletePlaylist(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	var track types.Track
	if err := json.NewDecoder(r.Body).Decode(&track); err != nil {
		s.writeError(w, errors.Join(types.ErrInvalidQuery, err))
		return
	}

	if err := s.library.AddTrack(r.Context(), r.PathValue("id"), track); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		s.writeError(w, errors.Join(types.ErrInvalidQuery, errors.New("identifier query parameter is required")))
		return
	}

	if err := s.library.RemoveTrack(r.Context(), r.PathValue("id"), identifier); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.library.ListFavorites(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	var fav types.Favorite
	if err := json.NewDecoder(r.Body).Decode(&fav); err != nil {
		s.writeError(w, errors.Join(types.ErrInvalidQuery, err))
		return
	}

	if err := s.library.SetFavorite(r.Context(), fav); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnfavorite(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		s.writeError(w, errors.Join(types.ErrInvalidQuery, errors.New("identifier query parameter is required")))
		return
	}

	if err := s.library.Unfavorite(r.Context(), identifier); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses and renders the
// {"error": ...} body. Unknown errors become 500 with a generic message so
// internal details never leak.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, types.ErrInvalidQuery):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, types.ErrUpstreamUnavailable), errors.Is(err, types.ErrAllSourcesFailed):
		status = http.StatusBadGateway
		msg = err.Error()
	default:
		s.logger.Error("unhandled request error", "err", err)
	}

	writeJSON(w, status, map[string]string{"error": msg})
}
