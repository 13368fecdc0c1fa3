// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the openstream backend.
// Implements: prd001-search (CandidateRecord, ScoredCandidate, SearchResultPage);
//
//	prd002-catalog (Album, Track);
//	prd003-library (Playlist).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

import (
	"encoding/json"
	"fmt"
)

// CandidateRecord is one raw search hit from an upstream catalog before
// scoring and deduplication.
type CandidateRecord struct {
	// Identifier is the stable upstream key (archive item identifier or
	// MusicBrainz release MBID).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the release title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Creator is the primary artist credit, when the source provides one.
	Creator string `json:"creator,omitempty" yaml:"creator,omitempty"`

	// Year is the release year as a string ("1970"); sources disagree on
	// date formats, so no parsing is attempted here.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Downloads is a popularity counter; zero when the source has none.
	Downloads int64 `json:"downloads,omitempty" yaml:"downloads,omitempty"`

	// Formats lists the audio encodings available for the item.
	Formats []string `json:"format,omitempty" yaml:"format,omitempty"`

	// Source identifies which backend found this candidate
	// (e.g. "archive", "musicbrainz").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// ScoredCandidate is a CandidateRecord with its computed relevance score.
// Scores are integers and may be negative; they are computed per query and
// never persisted.
type ScoredCandidate struct {
	CandidateRecord
	Score int `json:"score"`
}

// SearchResultPage is the paginated envelope returned by one search request.
// Docs are deduplicated and sorted descending by score. The page is never
// mutated after it is returned (it may be served from cache).
//
// NumFound is the best available upstream total and can exceed the number
// of candidates actually fetched and ranked; windows past the fetched
// candidate set come back as empty pages.
type SearchResultPage struct {
	Docs     []ScoredCandidate `json:"docs"`
	NumFound int               `json:"numFound"`
	Start    int               `json:"start"`
	Rows     int               `json:"rows"`
}

// Track is one playable file within an album.
type Track struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Title      string `json:"title" yaml:"title"`
	Creator    string `json:"creator,omitempty" yaml:"creator,omitempty"`
	StreamURL  string `json:"streamUrl" yaml:"stream_url"`
	Duration   string `json:"duration,omitempty" yaml:"duration,omitempty"`
	TrackNum   int    `json:"track,omitempty" yaml:"track,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Album is the track-detail view of one archive item: release metadata plus
// its ordered, playable track list.
type Album struct {
	Identifier string  `json:"identifier" yaml:"identifier"`
	Title      string  `json:"title" yaml:"title"`
	Creator    string  `json:"creator,omitempty" yaml:"creator,omitempty"`
	Year       string  `json:"year,omitempty" yaml:"year,omitempty"`
	CoverURL   string  `json:"coverUrl,omitempty" yaml:"cover_url,omitempty"`
	Tracks     []Track `json:"tracks" yaml:"tracks"`
}

// FlexString decodes upstream JSON fields that arrive as a scalar string,
// a number, or a list. When a list is sent the first element is
// authoritative. Archive.org returns title/creator/year in all three shapes.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexString(flatten(v))
	return nil
}

func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// Years and track numbers arrive as numbers; they are always whole.
		return fmt.Sprintf("%d", int64(t))
	case []any:
		if len(t) == 0 {
			return ""
		}
		return flatten(t[0])
	default:
		return fmt.Sprintf("%v", t)
	}
}

// String returns the decoded value.
func (f FlexString) String() string { return string(f) }
