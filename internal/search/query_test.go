// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/openstream/openstream/pkg/types"
)

// --- Tokens ---

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"simple", "grateful dead", []string{"grateful", "dead"}},
		{"drops single runes", "a grateful b dead", []string{"grateful", "dead"}},
		{"extra whitespace", "  grateful   dead  ", []string{"grateful", "dead"}},
		{"empty", "", nil},
		{"only noise", "a b c", nil},
		{"multibyte runes count", "björk éé", []string{"björk", "éé"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokens(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tokens(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- BuildArchiveQuery ---

func TestBuildArchiveQueryStructure(t *testing.T) {
	q, err := BuildArchiveQuery("grateful dead")
	if err != nil {
		t.Fatalf("BuildArchiveQuery() error = %v", err)
	}

	wantClauses := []string{
		fmt.Sprintf(`(creator:"grateful dead" OR title:"grateful dead")^%d`, phraseWeight),
		fmt.Sprintf(`(creator:"grateful" AND creator:"dead")^%d`, creatorWeight),
		fmt.Sprintf(`(title:"grateful" AND title:"dead")^%d`, titleWeight),
		"mediatype:(audio)",
		"format:(MP3)",
	}
	for _, clause := range wantClauses {
		if !strings.Contains(q, clause) {
			t.Errorf("query missing clause %q\nquery: %s", clause, q)
		}
	}
}

func TestBuildArchiveQueryWeightOrdering(t *testing.T) {
	q, err := BuildArchiveQuery("grateful dead")
	if err != nil {
		t.Fatalf("BuildArchiveQuery() error = %v", err)
	}

	phraseIdx := strings.Index(q, fmt.Sprintf("^%d", phraseWeight))
	creatorIdx := strings.Index(q, fmt.Sprintf("^%d", creatorWeight))
	titleIdx := strings.Index(q, fmt.Sprintf("^%d", titleWeight))
	if phraseIdx < 0 || creatorIdx < 0 || titleIdx < 0 {
		t.Fatalf("missing weight markers in query: %s", q)
	}
	if !(phraseIdx < creatorIdx && creatorIdx < titleIdx) {
		t.Errorf("clause order is phrase < creator < title, got indexes %d, %d, %d", phraseIdx, creatorIdx, titleIdx)
	}
}

func TestBuildArchiveQueryDenyList(t *testing.T) {
	q, err := BuildArchiveQuery("grateful dead")
	if err != nil {
		t.Fatalf("BuildArchiveQuery() error = %v", err)
	}

	for _, c := range excludedCollections {
		if !strings.Contains(q, "-collection:"+c) {
			t.Errorf("query missing collection filter %q", c)
		}
	}
	for _, term := range excludedTitleTerms {
		if !strings.Contains(q, "-title:"+term) {
			t.Errorf("query missing title filter %q", term)
		}
	}
}

func TestBuildArchiveQueryInvalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"single-rune tokens", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildArchiveQuery(tt.query)
			if !errors.Is(err, types.ErrInvalidQuery) {
				t.Errorf("err = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestBuildArchiveQueryPure(t *testing.T) {
	first, err := BuildArchiveQuery("pink floyd")
	if err != nil {
		t.Fatalf("BuildArchiveQuery() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := BuildArchiveQuery("pink floyd")
		if err != nil {
			t.Fatalf("BuildArchiveQuery() error = %v", err)
		}
		if got != first {
			t.Fatalf("query differs between calls:\n%s\n%s", first, got)
		}
	}
}
