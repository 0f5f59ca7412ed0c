// Package engine orchestrates tariff classification: an oracle estimate,
// exact and hierarchical resolution against the code table, leaf
// disambiguation for intermediate hits, and a fallback ladder that always
// produces a usable result.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comexar/despacho/internal/model"
	"github.com/comexar/despacho/internal/nomenclature"
	"github.com/comexar/despacho/internal/oracle"
)

// Request is one product to classify.
type Request struct {
	Description string
	ImageURL    string
	RequestID   string
}

// Config holds configuration options for the classification engine.
type Config struct {
	MaxCandidates int
	Workers       int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxCandidates: 5,
		Workers:       5,
	}
}

// Engine runs the classification pipeline.
type Engine struct {
	catalog       Catalog
	estimator     oracle.Estimator
	selector      oracle.Selector
	logger        *slog.Logger
	maxCandidates int
	workers       int
}

// New creates a classification engine with default configuration.
func New(catalog Catalog, estimator oracle.Estimator, selector oracle.Selector, logger *slog.Logger) *Engine {
	return NewWithConfig(catalog, estimator, selector, logger, DefaultConfig())
}

// NewWithConfig creates a classification engine with custom configuration.
func NewWithConfig(catalog Catalog, estimator oracle.Estimator, selector oracle.Selector, logger *slog.Logger, cfg Config) *Engine {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	return &Engine{
		catalog:       catalog,
		estimator:     estimator,
		selector:      selector,
		logger:        logger,
		maxCandidates: cfg.MaxCandidates,
		workers:       cfg.Workers,
	}
}

// Classify runs the full pipeline for one product. It returns an error only
// when the context is canceled; every other failure degrades into a
// classification whose Source and RequiresManualReview tell the story.
func (e *Engine) Classify(ctx context.Context, req Request) (model.Classification, error) {
	if err := ctx.Err(); err != nil {
		return model.Classification{}, err
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	logger := e.logger.With("request_id", requestID)
	logger.Info("classifying product", "description", truncate(req.Description, 80))

	estimate, err := e.estimator.EstimateCode(ctx, oracle.EstimateRequest{
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.Classification{}, err
		}
		logger.Error("oracle estimate failed", "error", err)
		warning := "classification oracle failed"
		if oracle.IsTransportError(err) {
			warning = "classification oracle unreachable"
		}
		return e.emergency(req, requestID, warning), nil
	}

	logger.Info("initial estimate",
		"code", estimate.EstimatedCode,
		"confidence", estimate.Confidence,
		"needs_deep_search", estimate.NeedsDeepSearch)

	// Exact resolution of the estimated code, retrying without a redundant
	// trailing ".00" the oracle sometimes appends to 6-digit positions.
	for _, query := range exactQueries(estimate.EstimatedCode) {
		match, siblings := e.catalog.ResolveExact(query)
		if match != nil {
			if match.RecordType == model.RecordTerminal {
				return e.fromPosition(req, requestID, match, model.SourceExactDBMatch, model.ConfidenceHigh, nil), nil
			}
			return e.disambiguate(ctx, req, requestID, match, e.catalog.ChildrenOf(match.BaseCode), estimate)
		}
		if len(siblings) > 0 {
			parent := siblings[0]
			return e.disambiguate(ctx, req, requestID, parent, siblings, estimate)
		}
	}

	// A confident estimate that asks for no deeper search is accepted as-is
	// even when the table has no row for it.
	if estimate.Confidence == model.ConfidenceHigh && !estimate.NeedsDeepSearch {
		logger.Info("accepting confident estimate without deep search", "code", estimate.EstimatedCode)
		return e.estimateOnly(req, requestID, estimate), nil
	}

	// Intermediate candidates are narrowed to a terminal child before
	// scoring, so every candidate on the table is a leaf.
	candidates, err := e.refineCandidates(ctx, req, requestID, e.collectCandidates(req, estimate))
	if err != nil {
		return model.Classification{}, err
	}
	if len(candidates) == 0 {
		logger.Warn("no candidates found", "estimated_code", estimate.EstimatedCode)
		return e.fallback(req, requestID, estimate), nil
	}

	best := pickBest(candidates)
	logger.Debug("best candidate",
		"code", best.Position.FullCode(),
		"match_type", best.MatchType,
		"score", best.Score)

	source := model.SourceHierarchicalDBMatch
	confidence := best.Confidence
	warning := ""
	if best.MatchType == model.MatchDisambiguated {
		if best.Refinement != nil && best.Refinement.WasLLMAnalyzed {
			source = model.SourceDisambiguatedLLM
		} else {
			confidence = model.ConfidenceLow
			warning = "disambiguation unavailable; defaulted to first terminal option"
		}
	}
	result := e.fromPosition(req, requestID, best.Position, source, confidence, best.Refinement)
	result.Warning = warning
	return result, nil
}

// collectCandidates gathers hierarchical matches for the estimate, its
// alternatives, and finally the product description.
func (e *Engine) collectCandidates(req Request, estimate oracle.EstimateResponse) []model.Candidate {
	candidates := e.catalog.ResolveApproximate(estimate.EstimatedCode, e.maxCandidates)

	for _, alt := range estimate.Alternatives {
		if len(candidates) >= e.maxCandidates {
			break
		}
		candidates = append(candidates, e.catalog.ResolveApproximate(alt.Code, e.maxCandidates-len(candidates))...)
	}

	if len(candidates) == 0 {
		candidates = e.catalog.ResolveApproximate(req.Description, e.maxCandidates)
	}
	return candidates
}

// exactQueries returns the lookup variants tried against the exact resolver.
func exactQueries(code string) []string {
	queries := []string{code}
	if trimmed := strings.TrimSuffix(code, ".00"); trimmed != code && len(trimmed) >= 4 {
		queries = append(queries, trimmed)
	}
	return queries
}

// fromPosition builds the final classification for a resolved terminal row.
func (e *Engine) fromPosition(req Request, requestID string, p *model.Position, source model.ClassificationSource, confidence model.ConfidenceLevel, refinement *model.RefinementInfo) model.Classification {
	return model.Classification{
		ClassifiedAt:  time.Now(),
		RequestID:     requestID,
		Input:         req.Description,
		Code:          p.FullCode(),
		Description:   p.Description,
		Source:        source,
		Confidence:    confidence,
		Refinement:    refinement,
		Interventions: nomenclature.InterventionsFor(p.Chapter),
		Duty: model.DutyTreatment{
			InterventionCode: p.InterventionCode,
			DutyRate:         p.DutyRate,
			StatisticalTax:   p.StatisticalTax,
			SpecificDuty:     p.SpecificDuty,
			ExportDuty:       p.ExportDuty,
			ExportRebate:     p.ExportRebate,
		},
	}
}

// estimateOnly emits the oracle's estimate directly, skipping table search.
func (e *Engine) estimateOnly(req Request, requestID string, estimate oracle.EstimateResponse) model.Classification {
	return e.fromEstimate(req, requestID, estimate, model.SourceAIEstimateOnly,
		"code taken from oracle estimate; duty treatment pending verification")
}

// fallback emits the estimate when the search found nothing usable. The duty
// treatment stays pending so downstream cost math flags it. A weak estimate
// degrades to the emergency position instead.
func (e *Engine) fallback(req Request, requestID string, estimate oracle.EstimateResponse) model.Classification {
	if estimate.EstimatedCode == "" || estimate.Confidence == model.ConfidenceLow {
		return e.emergency(req, requestID, "no database match and low-confidence estimate")
	}
	return e.fromEstimate(req, requestID, estimate, model.SourceFallback,
		"code not found in tariff table; duty treatment pending verification")
}

func (e *Engine) fromEstimate(req Request, requestID string, estimate oracle.EstimateResponse, source model.ClassificationSource, warning string) model.Classification {
	chapter := chapterFromCode(estimate.EstimatedCode)
	return model.Classification{
		ClassifiedAt:  time.Now(),
		RequestID:     requestID,
		Input:         req.Description,
		Code:          estimate.EstimatedCode,
		Description:   estimate.Justification,
		Source:        source,
		Confidence:    estimate.Confidence,
		Warning:       warning,
		Interventions: nomenclature.InterventionsFor(chapter),
		Duty:          model.DutyTreatment{Pending: true},
	}
}

// emergency is the last rung: a sentinel code outside every real chapter,
// flagged for manual review.
func (e *Engine) emergency(req Request, requestID, warning string) model.Classification {
	return model.Classification{
		ClassifiedAt:         time.Now(),
		RequestID:            requestID,
		Input:                req.Description,
		Code:                 model.EmergencyCode,
		Description:          "unclassified merchandise",
		Source:               model.SourceEmergencyFallback,
		Confidence:           model.ConfidenceLow,
		Warning:              warning,
		Duty:                 model.DutyTreatment{Pending: true},
		RequiresManualReview: true,
	}
}

// chapterFromCode parses the leading chapter digits of a code string.
func chapterFromCode(code string) int {
	normalized := nomenclature.Normalize(code)
	if len(normalized) < 2 {
		return 0
	}
	chapter, err := strconv.Atoi(normalized[:2])
	if err != nil {
		return 0
	}
	return chapter
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
