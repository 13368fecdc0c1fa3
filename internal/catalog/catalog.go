// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog resolves one archive item into its playable track list.
// Implements: prd002-catalog (R1-R3); docs/ARCHITECTURE § Track Detail.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openstream/openstream/internal/cache"
	"github.com/openstream/openstream/internal/httputil"
	"github.com/openstream/openstream/pkg/types"
)

// Archive endpoint roots. Declared as vars so tests can substitute an
// httptest server.
var (
	archiveMetadataBase = "https://archive.org/metadata"
	archiveImageBase    = "https://archive.org/services/img"
	archiveDownloadBase = "https://archive.org/download"
)

// cacheNamespace partitions album detail responses in the response cache.
const cacheNamespace = "album"

// identifierRE matches valid archive item identifiers. Anything else is
// rejected before it can reach the upstream URL path.
var identifierRE = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// playableFormats are the file formats exposed as streamable tracks, in
// preference order.
var playableFormats = []string{"VBR MP3", "MP3"}

// Service fetches album metadata from the archive and shapes it into the
// track-detail view. Responses are cached per identifier.
type Service struct {
	client *http.Client
	store  *cache.Store
	cfg    types.HTTPConfig
	ttl    time.Duration
	logger *log.Logger
}

// NewService creates a catalog Service. The cache store may be nil, in
// which case every lookup goes upstream.
func NewService(client *http.Client, store *cache.Store, cfg types.HTTPConfig, ttl time.Duration, logger *log.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		cfg:    cfg,
		ttl:    ttl,
		logger: logger,
	}
}

// AlbumDetail returns the album view of one archive item: release
// metadata, cover art URL, and the ordered list of playable tracks.
// Items with no playable files resolve to ErrNotFound, as do unknown
// identifiers.
func (s *Service) AlbumDetail(ctx context.Context, identifier string) (*types.Album, error) {
	id := strings.TrimSpace(identifier)
	if id == "" || !identifierRE.MatchString(id) {
		return nil, fmt.Errorf("%w: malformed identifier %q", types.ErrInvalidQuery, identifier)
	}

	if s.store != nil {
		if v, ok := s.store.Get(cacheNamespace, id); ok {
			if album, ok := v.(*types.Album); ok {
				return album, nil
			}
		}
	}

	meta, err := s.fetchMetadata(ctx, id)
	if err != nil {
		return nil, err
	}

	album := buildAlbum(id, meta)
	if len(album.Tracks) == 0 {
		return nil, fmt.Errorf("%w: item %q has no playable tracks", types.ErrNotFound, id)
	}

	if s.store != nil {
		s.store.Set(cacheNamespace, id, album, s.ttl)
	}
	return album, nil
}

// StreamURL returns the direct download URL for one file within an item.
func StreamURL(identifier, filename string) string {
	return archiveDownloadBase + "/" + identifier + "/" + filename
}

// CoverURL returns the archive thumbnail service URL for an item.
func CoverURL(identifier string) string {
	return archiveImageBase + "/" + identifier
}

func (s *Service) fetchMetadata(ctx context.Context, identifier string) (*itemMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveMetadataBase+"/"+identifier, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: archive metadata: %v", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: item %q", types.ErrNotFound, identifier)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: archive metadata returned HTTP %d", types.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var meta itemMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("%w: parsing archive metadata: %v", types.ErrUpstreamUnavailable, err)
	}

	// The metadata endpoint answers 200 with an empty object for unknown
	// items.
	if meta.Metadata.Identifier == "" && len(meta.Files) == 0 {
		return nil, fmt.Errorf("%w: item %q", types.ErrNotFound, identifier)
	}
	return &meta, nil
}

// buildAlbum shapes raw item metadata into the album view: playable files
// only, ordered by track number with filename as tiebreaker.
func buildAlbum(identifier string, meta *itemMetadata) *types.Album {
	creator := meta.Metadata.Creator.String()

	var tracks []types.Track
	for _, f := range meta.Files {
		if !isPlayable(f.Format.String()) {
			continue
		}
		title := f.Title.String()
		if title == "" {
			title = strings.TrimSuffix(f.Name, path.Ext(f.Name))
		}
		tracks = append(tracks, types.Track{
			Identifier: identifier + "/" + f.Name,
			Title:      title,
			Creator:    creator,
			StreamURL:  StreamURL(identifier, f.Name),
			Duration:   f.Length.String(),
			TrackNum:   trackNumber(f.Track.String()),
			Format:     f.Format.String(),
		})
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].TrackNum != tracks[j].TrackNum {
			return tracks[i].TrackNum < tracks[j].TrackNum
		}
		return tracks[i].Identifier < tracks[j].Identifier
	})

	title := meta.Metadata.Title.String()
	if title == "" {
		title = identifier
	}

	return &types.Album{
		Identifier: identifier,
		Title:      title,
		Creator:    creator,
		Year:       meta.Metadata.Year.String(),
		CoverURL:   CoverURL(identifier),
		Tracks:     tracks,
	}
}

func isPlayable(format string) bool {
	for _, f := range playableFormats {
		if format == f {
			return true
		}
	}
	return false
}

// trackNumber parses the first run of digits in a track field, which
// arrives as "7", "7/12", or "A7". Zero means unknown.
func trackNumber(track string) int {
	n := 0
	seen := false
	for _, r := range track {
		if r < '0' || r > '9' {
			if seen {
				break
			}
			continue
		}
		seen = true
		n = n*10 + int(r-'0')
	}
	return n
}

// Archive metadata JSON structures. Most fields arrive as scalar or list
// depending on the item, so FlexString absorbs both.
type itemMetadata struct {
	Metadata struct {
		Identifier string           `json:"identifier"`
		Title      types.FlexString `json:"title"`
		Creator    types.FlexString `json:"creator"`
		Year       types.FlexString `json:"year"`
	} `json:"metadata"`
	Files []itemFile `json:"files"`
}

type itemFile struct {
	Name   string           `json:"name"`
	Format types.FlexString `json:"format"`
	Title  types.FlexString `json:"title"`
	Track  types.FlexString `json:"track"`
	Length types.FlexString `json:"length"`
}
