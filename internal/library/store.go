// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists playlists and favorites in SQLite.
// Implements: prd003-library (R1-R5); docs/ARCHITECTURE § Library.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/openstream/openstream/pkg/types"
)

// Store manages the library SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the library database at cfg.DatabasePath,
// creating the parent directory and schema as needed.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	dir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DatabasePath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			identifier TEXT NOT NULL,
			title TEXT,
			creator TEXT,
			stream_url TEXT,
			duration TEXT,
			track_num INTEGER,
			format TEXT,
			UNIQUE(playlist_id, identifier)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id, position)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			identifier TEXT PRIMARY KEY,
			title TEXT,
			creator TEXT,
			year TEXT,
			added_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// CreatePlaylist inserts a new empty playlist and returns it.
func (s *Store) CreatePlaylist(ctx context.Context, name, description string) (*types.Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name is required", types.ErrInvalidQuery)
	}

	now := time.Now().UTC()
	p := &types.Playlist{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO playlists (id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting playlist: %w", err)
	}
	return p, nil
}

// ListPlaylists returns all playlists with track counts, newest first.
// Tracks are not loaded.
func (s *Store) ListPlaylists(ctx context.Context) ([]types.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
			(SELECT count(*) FROM playlist_tracks t WHERE t.playlist_id = p.id)
		 FROM playlists p
		 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	defer rows.Close()

	playlists := []types.Playlist{}
	for rows.Next() {
		var p types.Playlist
		var created, updated string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &created, &updated, &p.TrackCount); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// GetPlaylist returns one playlist with its ordered track list.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*types.Playlist, error) {
	var p types.Playlist
	var created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM playlists WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist %q", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading playlist: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)

	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, title, creator, stream_url, duration, track_num, format
		 FROM playlist_tracks WHERE playlist_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading playlist tracks: %w", err)
	}
	defer rows.Close()

	p.Tracks = []types.Track{}
	for rows.Next() {
		var t types.Track
		if err := rows.Scan(&t.Identifier, &t.Title, &t.Creator, &t.StreamURL, &t.Duration, &t.TrackNum, &t.Format); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		p.Tracks = append(p.Tracks, t)
	}
	p.TrackCount = len(p.Tracks)
	return &p, rows.Err()
}

// DeletePlaylist removes a playlist and its tracks.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: playlist %q", types.ErrNotFound, id)
	}
	return nil
}

// AddTrack appends a track to the end of a playlist. Adding a track that
// is already present is a no-op.
func (s *Store) AddTrack(ctx context.Context, playlistID string, track types.Track) error {
	if track.Identifier == "" {
		return fmt.Errorf("%w: track identifier is required", types.ErrInvalidQuery)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM playlists WHERE id = ?`, playlistID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking playlist: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: playlist %q", types.ErrNotFound, playlistID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO playlist_tracks (playlist_id, position, identifier, title, creator, stream_url, duration, track_num, format)
		 VALUES (?, (SELECT coalesce(max(position), 0) + 1 FROM playlist_tracks WHERE playlist_id = ?), ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(playlist_id, identifier) DO NOTHING`,
		playlistID, playlistID, track.Identifier, track.Title, track.Creator,
		track.StreamURL, track.Duration, track.TrackNum, track.Format,
	)
	if err != nil {
		return fmt.Errorf("inserting track: %w", err)
	}

	if err := touchPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveTrack deletes a track from a playlist and closes the position gap.
func (s *Store) RemoveTrack(ctx context.Context, playlistID, identifier string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_tracks WHERE playlist_id = ? AND identifier = ?`,
		playlistID, identifier)
	if err != nil {
		return fmt.Errorf("deleting track: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: track %q in playlist %q", types.ErrNotFound, identifier, playlistID)
	}

	// Resequence so positions stay dense after removal.
	_, err = tx.ExecContext(ctx,
		`UPDATE playlist_tracks
		 SET position = (
			SELECT count(*) FROM playlist_tracks t
			WHERE t.playlist_id = playlist_tracks.playlist_id
			  AND t.position <= playlist_tracks.position
		 )
		 WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return fmt.Errorf("resequencing tracks: %w", err)
	}

	if err := touchPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}
	return tx.Commit()
}

func touchPlaylist(ctx context.Context, tx *sql.Tx, playlistID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE playlists SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), playlistID)
	if err != nil {
		return fmt.Errorf("updating playlist timestamp: %w", err)
	}
	return nil
}

// SetFavorite stars an item. Starring an already-starred item refreshes
// its metadata but keeps the original added time.
func (s *Store) SetFavorite(ctx context.Context, fav types.Favorite) error {
	if fav.Identifier == "" {
		return fmt.Errorf("%w: favorite identifier is required", types.ErrInvalidQuery)
	}
	addedAt := fav.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (identifier, title, creator, year, added_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(identifier) DO UPDATE SET
			title=excluded.title, creator=excluded.creator, year=excluded.year`,
		fav.Identifier, fav.Title, fav.Creator, fav.Year,
		addedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting favorite: %w", err)
	}
	return nil
}

// Unfavorite removes a starred item.
func (s *Store) Unfavorite(ctx context.Context, identifier string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE identifier = ?`, identifier)
	if err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: favorite %q", types.ErrNotFound, identifier)
	}
	return nil
}

// ListFavorites returns all starred items, newest first.
func (s *Store) ListFavorites(ctx context.Context) ([]types.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, title, creator, year, added_at
		 FROM favorites ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	favorites := []types.Favorite{}
	for rows.Next() {
		var f types.Favorite
		var added string
		if err := rows.Scan(&f.Identifier, &f.Title, &f.Creator, &f.Year, &added); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		f.AddedAt, _ = time.Parse(time.RFC3339Nano, added)
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// libraryExport is the YAML export document shape.
type libraryExport struct {
	ExportedAt time.Time        `yaml:"exported_at"`
	Playlists  []types.Playlist `yaml:"playlists"`
	Favorites  []types.Favorite `yaml:"favorites"`
}

// ExportYAML writes the whole library (playlists with tracks, favorites)
// as one YAML document.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	summaries, err := s.ListPlaylists(ctx)
	if err != nil {
		return err
	}

	playlists := make([]types.Playlist, 0, len(summaries))
	for _, summary := range summaries {
		full, err := s.GetPlaylist(ctx, summary.ID)
		if err != nil {
			return err
		}
		playlists = append(playlists, *full)
	}

	favorites, err := s.ListFavorites(ctx)
	if err != nil {
		return err
	}

	doc := libraryExport{
		ExportedAt: time.Now().UTC(),
		Playlists:  playlists,
		Favorites:  favorites,
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding library export: %w", err)
	}
	return nil
}
