// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstream/openstream/pkg/types"
)

// --- stubs ---

type stubSearcher struct {
	page *types.SearchResultPage
	err  error

	gotQuery string
	gotStart int
	gotRows  int
}

func (s *stubSearcher) Search(_ context.Context, query string, start, rows int) (*types.SearchResultPage, error) {
	s.gotQuery, s.gotStart, s.gotRows = query, start, rows
	return s.page, s.err
}

type stubCatalog struct {
	album *types.Album
	err   error
}

func (s *stubCatalog) AlbumDetail(_ context.Context, _ string) (*types.Album, error) {
	return s.album, s.err
}

// stubLibrary keeps a single in-memory playlist, enough for handler tests.
type stubLibrary struct {
	playlist  *types.Playlist
	favorites []types.Favorite
	err       error
}

func (s *stubLibrary) CreatePlaylist(_ context.Context, name, description string) (*types.Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.playlist = &types.Playlist{ID: "p1", Name: name, Description: description}
	return s.playlist, nil
}

func (s *stubLibrary) ListPlaylists(_ context.Context) ([]types.Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.playlist == nil {
		return []types.Playlist{}, nil
	}
	return []types.Playlist{*s.playlist}, nil
}

func (s *stubLibrary) GetPlaylist(_ context.Context, id string) (*types.Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.playlist == nil || s.playlist.ID != id {
		return nil, fmt.Errorf("%w: playlist %q", types.ErrNotFound, id)
	}
	return s.playlist, nil
}

func (s *stubLibrary) DeletePlaylist(_ context.Context, id string) error {
	if s.playlist == nil || s.playlist.ID != id {
		return fmt.Errorf("%w: playlist %q", types.ErrNotFound, id)
	}
	s.playlist = nil
	return nil
}

func (s *stubLibrary) AddTrack(_ context.Context, playlistID string, track types.Track) error {
	if s.playlist == nil || s.playlist.ID != playlistID {
		return fmt.Errorf("%w: playlist %q", types.ErrNotFound, playlistID)
	}
	s.playlist.Tracks = append(s.playlist.Tracks, track)
	return nil
}

func (s *stubLibrary) RemoveTrack(_ context.Context, playlistID, identifier string) error {
	if s.playlist == nil || s.playlist.ID != playlistID {
		return fmt.Errorf("%w: playlist %q", types.ErrNotFound, playlistID)
	}
	for i, t := range s.playlist.Tracks {
		if t.Identifier == identifier {
			s.playlist.Tracks = append(s.playlist.Tracks[:i], s.playlist.Tracks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: track %q", types.ErrNotFound, identifier)
}

func (s *stubLibrary) SetFavorite(_ context.Context, fav types.Favorite) error {
	s.favorites = append(s.favorites, fav)
	return nil
}

func (s *stubLibrary) Unfavorite(_ context.Context, identifier string) error {
	for i, f := range s.favorites {
		if f.Identifier == identifier {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: favorite %q", types.ErrNotFound, identifier)
}

func (s *stubLibrary) ListFavorites(_ context.Context) ([]types.Favorite, error) {
	return s.favorites, nil
}

func testServer(searcher Searcher, catalog Catalog, library Library) http.Handler {
	return NewServer(searcher, catalog, library, log.New(io.Discard)).Handler()
}

// --- search ---

func TestHandleSearch(t *testing.T) {
	searcher := &stubSearcher{
		page: &types.SearchResultPage{
			Docs: []types.ScoredCandidate{
				{CandidateRecord: types.CandidateRecord{Identifier: "gd1977-05-08", Title: "Barton Hall"}, Score: 42},
			},
			NumFound: 1,
			Start:    0,
			Rows:     10,
		},
	}
	handler := testServer(searcher, &stubCatalog{}, &stubLibrary{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=grateful+dead&start=0&rows=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "grateful dead", searcher.gotQuery)
	assert.Equal(t, 10, searcher.gotRows)

	var body struct {
		Response types.SearchResultPage `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Response.Docs, 1)
	assert.Equal(t, "gd1977-05-08", body.Response.Docs[0].Identifier)
	assert.Equal(t, 1, body.Response.NumFound)
}

func TestHandleSearchErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid query", fmt.Errorf("%w: empty", types.ErrInvalidQuery), http.StatusBadRequest},
		{"all sources failed", fmt.Errorf("%w: archive down", types.ErrAllSourcesFailed), http.StatusBadGateway},
		{"upstream unavailable", fmt.Errorf("%w: HTTP 500", types.ErrUpstreamUnavailable), http.StatusBadGateway},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := testServer(&stubSearcher{err: tt.err}, &stubCatalog{}, &stubLibrary{})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x+y", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, body["error"], "disk on fire")
			}
		})
	}
}

// --- track detail ---

func TestHandleTrackDetail(t *testing.T) {
	catalog := &stubCatalog{
		album: &types.Album{
			Identifier: "gd1977-05-08",
			Title:      "Barton Hall",
			Tracks:     []types.Track{{Identifier: "gd1977-05-08/t1.mp3", Title: "Loser"}},
		},
	}
	handler := testServer(&stubSearcher{}, catalog, &stubLibrary{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/gd1977-05-08", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var album types.Album
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &album))
	assert.Equal(t, "Barton Hall", album.Title)
	require.Len(t, album.Tracks, 1)
}

func TestHandleTrackDetailNotFound(t *testing.T) {
	catalog := &stubCatalog{err: fmt.Errorf("%w: item", types.ErrNotFound)}
	handler := testServer(&stubSearcher{}, catalog, &stubLibrary{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/no-such-item", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- playlists ---

func TestPlaylistLifecycle(t *testing.T) {
	library := &stubLibrary{}
	handler := testServer(&stubSearcher{}, &stubCatalog{}, library)

	// Create.
	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"name": "Road Trip", "description": "long drives"}`)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/playlists", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created types.Playlist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Road Trip", created.Name)

	// Add a track.
	rec = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"identifier": "gd1977-05-08/t1.mp3", "title": "Loser"}`)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/playlists/"+created.ID+"/tracks", body))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Fetch it back.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlists/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Playlist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Tracks, 1)

	// Remove the track.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete,
		"/playlists/"+created.ID+"/tracks?identifier=gd1977-05-08%2Ft1.mp3", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Delete the playlist.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/playlists/"+created.ID, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlists/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlaylistBadJSON(t *testing.T) {
	handler := testServer(&stubSearcher{}, &stubCatalog{}, &stubLibrary{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/playlists", bytes.NewBufferString("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveTrackRequiresIdentifier(t *testing.T) {
	handler := testServer(&stubSearcher{}, &stubCatalog{}, &stubLibrary{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/playlists/p1/tracks", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- favorites ---

func TestFavorites(t *testing.T) {
	library := &stubLibrary{}
	handler := testServer(&stubSearcher{}, &stubCatalog{}, library)

	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"identifier": "gd1977-05-08", "title": "Barton Hall"}`)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/favorites", body))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favorites", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var favorites []types.Favorite
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favorites))
	require.Len(t, favorites, 1)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/favorites?identifier=gd1977-05-08", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/favorites?identifier=gd1977-05-08", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- middleware ---

func TestCORSPreflight(t *testing.T) {
	handler := testServer(&stubSearcher{}, &stubCatalog{}, &stubLibrary{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/search", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	handler := testServer(&stubSearcher{}, &stubCatalog{}, &stubLibrary{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
