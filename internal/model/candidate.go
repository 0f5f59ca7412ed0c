package model

// MatchType records which search strategy produced a candidate.
type MatchType string

// Match type constants.
const (
	MatchExact         MatchType = "exact"
	MatchDisambiguated MatchType = "disambiguated"
	MatchHierarchical8 MatchType = "hierarchical-8"
	MatchHierarchical6 MatchType = "hierarchical-6"
	MatchHierarchical4 MatchType = "hierarchical-4"
	MatchHierarchical2 MatchType = "hierarchical-2"
	MatchByDescription MatchType = "description"
)

// ConfidenceLevel labels how much a classification should be trusted.
type ConfidenceLevel string

// Confidence levels.
const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Candidate is an in-flight classification hypothesis produced by a resolver.
// It references a table-owned Position; it never copies or fabricates one.
type Candidate struct {
	Position   *Position
	Refinement *RefinementInfo
	MatchType  MatchType
	Confidence ConfidenceLevel
	Score      float64
}

// ConfidenceFor derives a confidence label from a match type and score.
func ConfidenceFor(matchType MatchType, score float64) ConfidenceLevel {
	if matchType == MatchExact {
		return ConfidenceHigh
	}
	if score > 0.8 {
		return ConfidenceMedium
	}
	return ConfidenceLow
}
