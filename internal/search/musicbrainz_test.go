// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openstream/openstream/pkg/types"
)

func TestMusicBrainzBackendSearch(t *testing.T) {
	var gotQuery, gotFmt, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotFmt = r.URL.Query().Get("fmt")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 57,
			"offset": 0,
			"releases": [
				{
					"id": "11af85e2-c272-4c59-a902-47f75141dc97",
					"title": "Workingman's Dead",
					"date": "1970-06-14",
					"artist-credit": [{"name": "Grateful Dead"}]
				},
				{
					"id": "5c5e2a63-6a2d-4b79-b53a-2fb8a0b5a99f",
					"title": "American Beauty",
					"date": "1970",
					"artist-credit": [{"name": "Grateful Dead"}]
				},
				{
					"id": "",
					"title": "ghost release"
				}
			]
		}`))
	}))
	defer server.Close()

	oldBase := musicBrainzAPIBase
	musicBrainzAPIBase = server.URL
	defer func() { musicBrainzAPIBase = oldBase }()

	backend := NewMusicBrainzBackend(server.Client())
	results, numFound, err := backend.Search(context.Background(), "grateful dead", testCfg())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if numFound != 57 {
		t.Errorf("numFound = %d, want 57", numFound)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (release without id is dropped)", len(results))
	}

	first := results[0]
	if first.Identifier != "11af85e2-c272-4c59-a902-47f75141dc97" {
		t.Errorf("Identifier = %q, want MBID", first.Identifier)
	}
	if first.Creator != "Grateful Dead" {
		t.Errorf("Creator = %q, want %q", first.Creator, "Grateful Dead")
	}
	if first.Year != "1970" {
		t.Errorf("Year = %q, want %q (year part of full date)", first.Year, "1970")
	}
	if first.Source != "musicbrainz" {
		t.Errorf("Source = %q, want %q", first.Source, "musicbrainz")
	}
	if results[1].Year != "1970" {
		t.Errorf("Year = %q, want %q (bare-year date)", results[1].Year, "1970")
	}

	if gotQuery != "grateful dead" {
		t.Errorf("query param = %q, want %q", gotQuery, "grateful dead")
	}
	if gotFmt != "json" {
		t.Errorf("fmt param = %q, want json", gotFmt)
	}
	// MusicBrainz rejects anonymous clients without an identifying UA.
	if gotUA != "test/0.1" {
		t.Errorf("User-Agent = %q, want test/0.1", gotUA)
	}
}

func TestMusicBrainzBackendUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	oldBase := musicBrainzAPIBase
	musicBrainzAPIBase = server.URL
	defer func() { musicBrainzAPIBase = oldBase }()

	backend := NewMusicBrainzBackend(server.Client())
	_, _, err := backend.Search(context.Background(), "grateful dead", testCfg())
	if !errors.Is(err, types.ErrUpstreamUnavailable) {
		t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestMusicBrainzBackendInvalidQuery(t *testing.T) {
	backend := NewMusicBrainzBackend(http.DefaultClient)

	_, _, err := backend.Search(context.Background(), " ", testCfg())
	if !errors.Is(err, types.ErrInvalidQuery) {
		t.Errorf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestReleaseYear(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"1970-06-14", "1970"},
		{"1970", "1970"},
		{"", ""},
		{"19", ""},
	}
	for _, tt := range tests {
		if got := releaseYear(tt.date); got != tt.want {
			t.Errorf("releaseYear(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}
