package engine

import (
	"github.com/comexar/despacho/internal/model"
)

// sourceWeights rank how a candidate was found: exact terminals first, then
// terminals chosen by disambiguating an intermediate, then prefix matches in
// decreasing specificity, with description matches at the bottom.
var sourceWeights = map[model.MatchType]float64{
	model.MatchExact:         100,
	model.MatchDisambiguated: 95,
	model.MatchHierarchical8: 90,
	model.MatchHierarchical6: 80,
	model.MatchHierarchical4: 70,
	model.MatchHierarchical2: 60,
	model.MatchByDescription: 50,
}

// defaultSourceWeight covers match types outside the table above, which only
// a resolver added later could produce.
const defaultSourceWeight = 40

var confidenceWeights = map[model.ConfidenceLevel]float64{
	model.ConfidenceHigh:   30,
	model.ConfidenceMedium: 20,
	model.ConfidenceLow:    10,
}

// compositeScore blends match provenance, confidence and the raw match
// score into one comparable number.
func compositeScore(c model.Candidate) float64 {
	weight, ok := sourceWeights[c.MatchType]
	if !ok {
		weight = defaultSourceWeight
	}
	return weight + confidenceWeights[c.Confidence] + c.Score*10
}

// pickBest returns the highest-scoring candidate. Ties go to the more
// specific code, then to the earlier candidate.
func pickBest(candidates []model.Candidate) model.Candidate {
	best := candidates[0]
	bestScore := compositeScore(best)
	for _, c := range candidates[1:] {
		score := compositeScore(c)
		switch {
		case score > bestScore:
			best, bestScore = c, score
		case score == bestScore && len(c.Position.NormalizedCode) > len(best.Position.NormalizedCode):
			best = c
		}
	}
	return best
}
