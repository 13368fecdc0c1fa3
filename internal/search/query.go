// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/openstream/openstream/pkg/types"
)

// Clause weights for the archive query. The exact values are tunable
// policy; the relative ordering (exact phrase > all tokens in creator >
// all tokens in title) is the contract.
const (
	phraseWeight  = 8
	creatorWeight = 4
	titleWeight   = 2
)

// Canonical exclusion deny-list. Several divergent lists existed
// historically; this is the single policy applied to every archive query.
var (
	excludedCollections = []string{
		"podcasts",
		"samples_only",
		"radioprograms",
		"audio_religion",
	}
	excludedTitleTerms = []string{
		"karaoke",
		"remix",
		"cover",
		"instrumental",
		"tribute",
	}
)

// Tokens splits a raw query on whitespace and discards single-character
// tokens as noise.
func Tokens(query string) []string {
	var out []string
	for _, f := range strings.Fields(query) {
		if utf8.RuneCountInString(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// BuildArchiveQuery turns a free-text query into a field-weighted boolean
// expression in archive search syntax. The build is pure: no I/O, and the
// same input always yields the same string.
//
// The expression ORs three weighted clauses (whole-phrase match on creator
// and title, all tokens in creator, all tokens in title), then ANDs the
// audio media constraint and the negated deny-list filters.
func BuildArchiveQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	tokens := Tokens(q)
	if q == "" || len(tokens) == 0 {
		return "", fmt.Errorf("%w: no searchable terms in %q", types.ErrInvalidQuery, query)
	}

	var b strings.Builder
	b.WriteString("(")
	fmt.Fprintf(&b, "(creator:%q OR title:%q)^%d", q, q, phraseWeight)

	b.WriteString(" OR (")
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "creator:%q", tok)
	}
	fmt.Fprintf(&b, ")^%d", creatorWeight)

	b.WriteString(" OR (")
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "title:%q", tok)
	}
	fmt.Fprintf(&b, ")^%d", titleWeight)
	b.WriteString(")")

	b.WriteString(" AND mediatype:(audio) AND format:(MP3)")
	for _, c := range excludedCollections {
		fmt.Fprintf(&b, " AND -collection:%s", c)
	}
	for _, term := range excludedTitleTerms {
		fmt.Fprintf(&b, " AND -title:%s", term)
	}

	return b.String(), nil
}
