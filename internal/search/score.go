// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"math"
	"strings"

	"github.com/openstream/openstream/pkg/types"
)

// Canonical scoring policy. Divergent historical weights were collapsed
// into this single set of constants.
const (
	// phraseBonus rewards the full query appearing verbatim in a field.
	phraseBonus = 10

	// tokenBonus rewards each individual query token found in a field.
	tokenBonus = 3

	// yearBonus rewards candidates that carry any release date.
	yearBonus = 2

	// placeholderPenalty punishes the generic creator value "Album",
	// which upstream uses when the real artist is unknown.
	placeholderPenalty = -5
)

const placeholderCreator = "album"

// Score assigns an integer relevance score to a candidate for the given
// decoded query. Comparisons are case-insensitive. Deterministic: the same
// query and candidate fields always produce the same score, which keeps
// duplicate-group resolution stable.
func Score(c types.CandidateRecord, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	title := strings.ToLower(c.Title)
	creator := strings.ToLower(c.Creator)

	score := 0
	if q != "" {
		if strings.Contains(title, q) {
			score += phraseBonus
		}
		if strings.Contains(creator, q) {
			score += phraseBonus
		}
	}
	if creator == placeholderCreator {
		score += placeholderPenalty
	}
	for _, tok := range Tokens(q) {
		if strings.Contains(title, tok) {
			score += tokenBonus
		}
		if strings.Contains(creator, tok) {
			score += tokenBonus
		}
	}
	if c.Downloads > 0 {
		score += int(math.Log(float64(c.Downloads)))
	}
	if c.Year != "" {
		score += yearBonus
	}
	return score
}
