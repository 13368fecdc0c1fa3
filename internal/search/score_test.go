// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"testing"

	"github.com/openstream/openstream/pkg/types"
)

func TestScoreSignals(t *testing.T) {
	query := "grateful dead"
	tests := []struct {
		name string
		c    types.CandidateRecord
		want int
	}{
		{
			"no match",
			types.CandidateRecord{Title: "Abbey Road", Creator: "The Beatles"},
			0,
		},
		{
			"phrase in title",
			types.CandidateRecord{Title: "grateful dead live 1977"},
			phraseBonus + 2*tokenBonus,
		},
		{
			"phrase in creator",
			types.CandidateRecord{Title: "Cornell 5/8/77", Creator: "Grateful Dead"},
			phraseBonus + 2*tokenBonus,
		},
		{
			"phrase in both",
			types.CandidateRecord{Title: "Grateful Dead Anthology", Creator: "Grateful Dead"},
			2*phraseBonus + 4*tokenBonus,
		},
		{
			"single token in title",
			types.CandidateRecord{Title: "Dead Flowers", Creator: "The Rolling Stones"},
			tokenBonus,
		},
		{
			"year bonus",
			types.CandidateRecord{Title: "grateful dead live", Year: "1977"},
			phraseBonus + 2*tokenBonus + yearBonus,
		},
		{
			"placeholder creator penalty",
			types.CandidateRecord{Title: "grateful dead live", Creator: "Album"},
			phraseBonus + 2*tokenBonus + placeholderPenalty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.c, query); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreDownloadsMonotonic(t *testing.T) {
	base := types.CandidateRecord{Title: "grateful dead live", Creator: "Grateful Dead"}

	prev := Score(base, "grateful dead")
	for _, downloads := range []int64{1, 10, 1000, 100000} {
		c := base
		c.Downloads = downloads
		got := Score(c, "grateful dead")
		if got < prev {
			t.Errorf("Score with %d downloads = %d, less than %d", downloads, got, prev)
		}
		prev = got
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	c := types.CandidateRecord{Title: "GRATEFUL DEAD LIVE", Creator: "grateful DEAD"}

	lower := Score(c, "grateful dead")
	upper := Score(c, "GRATEFUL DEAD")
	if lower != upper {
		t.Errorf("Score differs by query case: %d != %d", lower, upper)
	}
	if lower <= 0 {
		t.Errorf("Score = %d, want positive for strong match", lower)
	}
}

func TestScoreDeterministic(t *testing.T) {
	c := types.CandidateRecord{
		Title:     "Workingman's Dead (Remastered 2003)",
		Creator:   "Grateful Dead",
		Year:      "2003",
		Downloads: 200,
	}

	first := Score(c, "grateful dead")
	for i := 0; i < 100; i++ {
		if got := Score(c, "grateful dead"); got != first {
			t.Fatalf("Score() = %d on iteration %d, want %d", got, i, first)
		}
	}
}
