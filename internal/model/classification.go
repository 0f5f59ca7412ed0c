package model

import "time"

// ClassificationSource indicates which pipeline path produced a result.
type ClassificationSource string

// Classification source constants.
const (
	SourceExactDBMatch        ClassificationSource = "exact_db_match"
	SourceDisambiguatedLLM    ClassificationSource = "disambiguated_llm"
	SourceHierarchicalDBMatch ClassificationSource = "hierarchical_db_match"
	SourceAIEstimateOnly      ClassificationSource = "ai_estimate_only"
	SourceFallback            ClassificationSource = "fallback"
	SourceEmergencyFallback   ClassificationSource = "emergency_fallback"
)

// EmergencyCode is the sentinel position emitted when classification fails
// entirely. It sits outside every real NCM chapter.
const EmergencyCode = "9999.99.99"

// DutyTreatment carries the fiscal fields of a resolved position.
// Pending marks placeholder values awaiting official verification.
type DutyTreatment struct {
	InterventionCode string
	DutyRate         float64
	StatisticalTax   float64
	SpecificDuty     float64
	ExportDuty       float64
	ExportRebate     float64
	VATRate          float64
	Pending          bool
}

// RefinementInfo records how an intermediate position was narrowed to a
// terminal leaf during disambiguation.
type RefinementInfo struct {
	OriginalCode     string
	Justification    string
	OptionsEvaluated int
	ChosenIndex      int
	WasLLMAnalyzed   bool
}

// Classification is the terminal output of the classification pipeline.
// Classify always produces one; callers inspect Source and
// RequiresManualReview rather than handling errors.
type Classification struct {
	ClassifiedAt         time.Time
	Refinement           *RefinementInfo
	RequestID            string
	Input                string
	Code                 string
	Description          string
	Warning              string
	Source               ClassificationSource
	Confidence           ConfidenceLevel
	Interventions        []string
	Duty                 DutyTreatment
	RequiresManualReview bool
}
