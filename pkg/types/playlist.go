// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Playlist is a user-assembled, ordered collection of tracks. The library
// is single-tenant; there is no owner field.
type Playlist struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`

	// TrackCount is filled on list views where tracks are not loaded.
	TrackCount int `json:"trackCount" yaml:"track_count"`

	// Tracks is the ordered track list; nil on list views.
	Tracks []Track `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

// Favorite is one starred item, listed newest first.
type Favorite struct {
	Identifier string    `json:"identifier" yaml:"identifier"`
	Title      string    `json:"title" yaml:"title"`
	Creator    string    `json:"creator,omitempty" yaml:"creator,omitempty"`
	Year       string    `json:"year,omitempty" yaml:"year,omitempty"`
	AddedAt    time.Time `json:"addedAt" yaml:"added_at"`
}
