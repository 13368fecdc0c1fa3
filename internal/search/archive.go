// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/openstream/openstream/internal/httputil"
	"github.com/openstream/openstream/pkg/types"
)

// archiveSearchBase is the archive full-text search endpoint. Declared as
// a var so tests can substitute an httptest server.
var archiveSearchBase = "https://archive.org/advancedsearch.php"

// archiveFields are the document fields requested from the search endpoint.
var archiveFields = []string{"identifier", "title", "creator", "year", "downloads", "format"}

// archiveSorts orders the raw window by popularity, then recency. The
// endpoint reads repeated "sort[]" parameters; a plain "sort" is ignored.
var archiveSorts = []string{"downloads desc", "year desc"}

// ArchiveBackend queries the archive.org advanced search API.
type ArchiveBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *ArchiveBackend) Name() string { return "archive" }

// Search runs one capped raw-window query against the archive search
// endpoint and returns the candidates plus the upstream total.
func (b *ArchiveBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.CandidateRecord, int, error) {
	q, err := BuildArchiveQuery(query)
	if err != nil {
		return nil, 0, err
	}

	rows := cfg.FetchRows
	if rows <= 0 {
		rows = 150
	}

	params := url.Values{
		"q":      {q},
		"rows":   {strconv.Itoa(rows)},
		"start":  {"0"},
		"output": {"json"},
	}
	for _, s := range archiveSorts {
		params.Add("sort[]", s)
	}
	for _, f := range archiveFields {
		params.Add("fl", f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: archive search: %v", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: archive search returned HTTP %d", types.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var ar archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, 0, fmt.Errorf("%w: parsing archive response: %v", types.ErrUpstreamUnavailable, err)
	}

	results := make([]types.CandidateRecord, 0, len(ar.Response.Docs))
	for _, doc := range ar.Response.Docs {
		if doc.Identifier == "" {
			continue
		}
		results = append(results, types.CandidateRecord{
			Identifier: doc.Identifier,
			Title:      doc.Title.String(),
			Creator:    doc.Creator.String(),
			Year:       doc.Year.String(),
			Downloads:  doc.Downloads,
			Formats:    doc.Format,
			Source:     "archive",
		})
	}
	return results, ar.Response.NumFound, nil
}

// Archive search JSON structures. Title, creator, and year arrive as
// either a scalar or a list; the first element is authoritative.
type archiveResponse struct {
	Response struct {
		NumFound int          `json:"numFound"`
		Start    int          `json:"start"`
		Docs     []archiveDoc `json:"docs"`
	} `json:"response"`
}

type archiveDoc struct {
	Identifier string           `json:"identifier"`
	Title      types.FlexString `json:"title"`
	Creator    types.FlexString `json:"creator"`
	Year       types.FlexString `json:"year"`
	Downloads  int64            `json:"downloads"`
	Format     flexList         `json:"format"`
}

// flexList decodes a field that arrives as either a single string or a
// list of strings.
type flexList []string

func (f *flexList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*f = flexList(list)
	return nil
}
