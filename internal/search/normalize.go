// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"regexp"
	"strings"

	"github.com/openstream/openstream/pkg/types"
)

var (
	parentheticalRE = regexp.MustCompile(`\s*\([^)]*\)`)
	nonWordRE       = regexp.MustCompile(`[^\w\s-]`)
	versionSuffixRE = regexp.MustCompile(`(?:_\d+)+$`)
	editionMarkerRE = regexp.MustCompile(`(?i)\b(disc|cd|vol|volume|parte|pt|remix|remaster(?:ed)?)\b\s*\d*`)
	whitespaceRE    = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces a release title to its equivalence-class form:
// lowercased, punctuation and parenthetical suffixes stripped, trailing
// "_<digits>" version suffixes removed, and disc/volume/part/remix/remaster
// markers (with or without trailing numbers) removed. Idempotent.
//
// The marker and suffix strips run to a fixpoint because removing one can
// expose another ("song_12 remix" leaves "song_12"; "greatest hits vol_2"
// leaves a bare "vol"). Each pass only shrinks the string, so the loop
// terminates.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = parentheticalRE.ReplaceAllString(t, "")
	t = nonWordRE.ReplaceAllString(t, "")
	for {
		prev := t
		t = editionMarkerRE.ReplaceAllString(t, "")
		t = whitespaceRE.ReplaceAllString(t, " ")
		t = strings.TrimSpace(t)
		t = versionSuffixRE.ReplaceAllString(t, "")
		if t == prev {
			return t
		}
	}
}

// SameAlbum reports whether two titles refer to the same release: their
// normalized forms are equal, or one contains the other. The containment
// rule is deliberately permissive. "Greatest Hits" matching "The Greatest
// Hits Vol 2" is desired; unrelated short titles colliding ("Red" and
// "Bread") is an accepted risk.
func SameAlbum(a, b string) bool {
	return sameNormalized(NormalizeTitle(a), NormalizeTitle(b))
}

func sameNormalized(na, nb string) bool {
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

type duplicateGroup struct {
	// title is the normalized title of the group's first member, which
	// keys the group for subsequent containment checks.
	title   string
	members []types.ScoredCandidate
}

// Dedupe collapses near-duplicate candidates into one representative per
// semantic title and drops representatives with score <= 0.
//
// Grouping iterates candidates in input order and linearly scans existing
// groups for a title match: quadratic in the candidate count, acceptable
// only because the raw window is capped before grouping. Each group
// resolves to its strictly highest-scoring member; ties keep the earliest
// seen. The output preserves group-creation order.
func Dedupe(candidates []types.ScoredCandidate) []types.ScoredCandidate {
	var groups []duplicateGroup
	for _, c := range candidates {
		norm := NormalizeTitle(c.Title)
		placed := false
		for i := range groups {
			if sameNormalized(norm, groups[i].title) {
				groups[i].members = append(groups[i].members, c)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, duplicateGroup{
				title:   norm,
				members: []types.ScoredCandidate{c},
			})
		}
	}

	out := make([]types.ScoredCandidate, 0, len(groups))
	for _, g := range groups {
		best := g.members[0]
		for _, m := range g.members[1:] {
			if m.Score > best.Score {
				best = m
			}
		}
		if best.Score > 0 {
			out = append(out, best)
		}
	}
	return out
}
