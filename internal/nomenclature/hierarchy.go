package nomenclature

import (
	"sort"
	"strings"

	"github.com/comexar/despacho/internal/model"
)

// breadthCap stops prefix widening once a specific-enough level is already
// saturated; without it a chapter-level prefix drags in thousands of rows.
const breadthCap = 50

// descriptionThreshold is the minimum blended similarity for a description
// match to count as a candidate.
const descriptionThreshold = 0.4

// ResolveApproximate runs the hierarchical fallback search. Numeric queries
// walk prefix buckets from most to least specific; free-text queries score
// descriptions. Chapter and heading rows are grouping nodes and never
// surface as candidates. The result is deduplicated by (base, suffix),
// sorted by score and truncated to maxResults. Empty or garbage input
// yields an empty list, never an error.
func (t *Table) ResolveApproximate(query string, maxResults int) []model.Candidate {
	query = strings.TrimSpace(query)
	if query == "" || maxResults <= 0 {
		return nil
	}

	var candidates []model.Candidate
	if query[0] >= '0' && query[0] <= '9' {
		candidates = t.searchByPrefix(query)
	} else {
		candidates = t.searchByDescription(query)
	}

	candidates = dedupeCandidates(candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		// More specific code wins a score tie.
		return len(candidates[i].Position.NormalizedCode) > len(candidates[j].Position.NormalizedCode)
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates
}

// searchByPrefix collects rows under decreasing prefix lengths of the
// query's digit run.
func (t *Table) searchByPrefix(query string) []model.Candidate {
	normalized := Normalize(query)
	if len(normalized) < 2 {
		return nil
	}

	var candidates []model.Candidate
	for _, n := range prefixLengths {
		if len(normalized) < n {
			continue
		}
		prefix := normalized[:n]
		matches := t.byPrefix[prefix]
		for _, p := range matches {
			if p.RecordType == model.RecordHeader {
				continue
			}
			candidates = append(candidates, model.Candidate{
				Position:   p,
				MatchType:  hierarchicalMatchType(n),
				Score:      float64(n) / 8,
				Confidence: model.ConfidenceFor(hierarchicalMatchType(n), float64(n)/8),
			})
		}
		if len(matches) >= breadthCap && n >= 4 {
			break
		}
	}
	return candidates
}

func hierarchicalMatchType(prefixLen int) model.MatchType {
	switch prefixLen {
	case 8:
		return model.MatchHierarchical8
	case 6:
		return model.MatchHierarchical6
	case 4:
		return model.MatchHierarchical4
	default:
		return model.MatchHierarchical2
	}
}

// searchByDescription scores every row's description against a free-text
// query. A chapter pre-filter keyed on domain keywords suppresses false
// positives from unrelated chapters.
func (t *Table) searchByDescription(query string) []model.Candidate {
	queryLower := strings.ToLower(query)
	queryWords := fieldsSet(queryLower)
	if len(queryWords) == 0 {
		return nil
	}

	chapterFilter := chapterRangeFor(queryLower)

	var candidates []model.Candidate
	for _, p := range t.positions {
		if p.RecordType == model.RecordHeader || len(p.Description) < 3 {
			continue
		}
		if chapterFilter != nil && !chapterFilter.contains(p.Chapter) {
			continue
		}

		description := strings.ToLower(p.Description)
		score := blendedSimilarity(queryLower, queryWords, description)
		if score <= descriptionThreshold {
			continue
		}

		candidates = append(candidates, model.Candidate{
			Position:   p,
			MatchType:  model.MatchByDescription,
			Score:      score,
			Confidence: model.ConfidenceFor(model.MatchByDescription, score),
		})
	}
	return candidates
}

// blendedSimilarity combines sequence similarity, word overlap and exact
// keyword hits, penalizing the nomenclature's generic catch-all rows.
func blendedSimilarity(queryLower string, queryWords map[string]struct{}, description string) float64 {
	descWords := fieldsSet(description)

	overlap := 0
	exactHits := 0
	for w := range queryWords {
		if _, ok := descWords[w]; ok {
			overlap++
		}
		if strings.Contains(description, w) {
			exactHits++
		}
	}
	wordOverlap := float64(overlap) / float64(len(queryWords))
	keywordRatio := float64(exactHits) / float64(len(queryWords))

	score := 0.4*sequenceSimilarity(queryLower, description) +
		0.3*wordOverlap +
		0.3*keywordRatio

	if isGenericDescription(description) {
		score -= 0.2
	}
	return score
}

// isGenericDescription flags the nomenclature's catch-all rows.
func isGenericDescription(description string) bool {
	for _, generic := range []string{"los demás", "las demás", "otros"} {
		if strings.Contains(description, generic) {
			return true
		}
	}
	return false
}

func fieldsSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// dedupeCandidates keeps the first (highest ranked at its insertion level)
// candidate per (base code, suffix) pair.
func dedupeCandidates(candidates []model.Candidate) []model.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := candidates[:0]
	for _, c := range candidates {
		key := c.Position.BaseCode + "\x00" + c.Position.Suffix
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
