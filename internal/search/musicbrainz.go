// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/openstream/openstream/internal/httputil"
	"github.com/openstream/openstream/pkg/types"
)

// musicBrainzAPIBase is the MusicBrainz web service root. Declared as a
// var so tests can substitute an httptest server.
var musicBrainzAPIBase = "https://musicbrainz.org/ws/2"

// musicBrainzMaxLimit is the largest page the release search accepts.
const musicBrainzMaxLimit = 100

// MusicBrainzBackend queries the MusicBrainz release search. MusicBrainz
// allows one request per second for anonymous clients and requires an
// identifying User-Agent; the limiter enforces the former.
type MusicBrainzBackend struct {
	Client  *http.Client
	limiter *rate.Limiter
}

// NewMusicBrainzBackend creates a backend with the 1 req/s limiter wired.
func NewMusicBrainzBackend(client *http.Client) *MusicBrainzBackend {
	return &MusicBrainzBackend{
		Client:  client,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Name returns the backend identifier.
func (b *MusicBrainzBackend) Name() string { return "musicbrainz" }

// Search queries the release endpoint and maps releases to candidates.
// MusicBrainz has no download counters, so its candidates rely on the
// text-match signals alone.
func (b *MusicBrainzBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.CandidateRecord, int, error) {
	q := strings.TrimSpace(query)
	if q == "" || len(Tokens(q)) == 0 {
		return nil, 0, fmt.Errorf("%w: no searchable terms in %q", types.ErrInvalidQuery, query)
	}

	limit := cfg.FetchRows
	if limit <= 0 || limit > musicBrainzMaxLimit {
		limit = musicBrainzMaxLimit
	}

	params := url.Values{
		"query": {q},
		"limit": {strconv.Itoa(limit)},
		"fmt":   {"json"},
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, musicBrainzAPIBase+"/release?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: musicbrainz search: %v", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: musicbrainz returned HTTP %d", types.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var mr musicBrainzResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, 0, fmt.Errorf("%w: parsing musicbrainz response: %v", types.ErrUpstreamUnavailable, err)
	}

	results := make([]types.CandidateRecord, 0, len(mr.Releases))
	for _, rel := range mr.Releases {
		if rel.ID == "" {
			continue
		}
		creator := ""
		if len(rel.ArtistCredit) > 0 {
			creator = rel.ArtistCredit[0].Name
		}
		results = append(results, types.CandidateRecord{
			Identifier: rel.ID,
			Title:      rel.Title,
			Creator:    creator,
			Year:       releaseYear(rel.Date),
			Source:     "musicbrainz",
		})
	}
	return results, mr.Count, nil
}

// releaseYear extracts the year from a MusicBrainz date, which is either
// "YYYY-MM-DD" or "YYYY".
func releaseYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

// MusicBrainz release search JSON structures.
type musicBrainzResponse struct {
	Count    int                  `json:"count"`
	Offset   int                  `json:"offset"`
	Releases []musicBrainzRelease `json:"releases"`
}

type musicBrainzRelease struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	ArtistCredit []struct {
		Name string `json:"name"`
	} `json:"artist-credit"`
}
