package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/comexar/despacho/internal/model"
	"github.com/comexar/despacho/internal/oracle"
)

// disambiguate narrows an intermediate position to one of its terminal
// options. The oracle picks when there is a real choice; a failed pick
// degrades to the first option rather than aborting the pipeline.
func (e *Engine) disambiguate(ctx context.Context, req Request, requestID string, parent *model.Position, options []*model.Position, estimate oracle.EstimateResponse) (model.Classification, error) {
	switch len(options) {
	case 0:
		e.logger.Warn("intermediate position has no terminal options",
			"request_id", requestID,
			"code", parent.FullCode())
		return e.fallback(req, requestID, estimate), nil
	case 1:
		refinement := &model.RefinementInfo{
			OriginalCode:     parent.FullCode(),
			Justification:    "single terminal option under position",
			OptionsEvaluated: 1,
		}
		return e.fromPosition(req, requestID, options[0], model.SourceHierarchicalDBMatch, model.ConfidenceMedium, refinement), nil
	}

	chosen, refinement, confidence, err := e.selectTerminal(ctx, req, requestID, parent, options)
	if err != nil {
		return model.Classification{}, err
	}

	if !refinement.WasLLMAnalyzed {
		result := e.fromPosition(req, requestID, chosen, model.SourceHierarchicalDBMatch, model.ConfidenceLow, refinement)
		result.Warning = "disambiguation unavailable; defaulted to first terminal option"
		return result, nil
	}

	e.logger.Info("position disambiguated",
		"request_id", requestID,
		"parent", parent.FullCode(),
		"chosen", chosen.FullCode(),
		"confidence", confidence)

	return e.fromPosition(req, requestID, chosen, model.SourceDisambiguatedLLM, confidence, refinement), nil
}

// selectTerminal asks the selector to choose among terminal options. A
// failed call or an out-of-range answer degrades to the first option, with
// the refinement flagged not-LLM-analyzed. Context cancellation propagates.
func (e *Engine) selectTerminal(ctx context.Context, req Request, requestID string, parent *model.Position, options []*model.Position) (*model.Position, *model.RefinementInfo, model.ConfidenceLevel, error) {
	selectReq := oracle.SelectRequest{
		ParentContext: fmt.Sprintf("%s %s", parent.FullCode(), parent.Description),
		Description:   req.Description,
		Options:       make([]oracle.SelectOptionItem, len(options)),
	}
	for i, opt := range options {
		selectReq.Options[i] = oracle.SelectOptionItem{
			Label:       opt.FullCode(),
			Description: opt.Description,
			DutyRate:    opt.DutyRate,
		}
	}

	resp, err := e.selector.SelectOption(ctx, selectReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, "", err
		}
		e.logger.Warn("option selection failed, defaulting to first option",
			"request_id", requestID,
			"parent", parent.FullCode(),
			"error", err)
		return options[0], &model.RefinementInfo{
			OriginalCode:     parent.FullCode(),
			Justification:    "selection unavailable, first option taken",
			OptionsEvaluated: len(options),
		}, model.ConfidenceLow, nil
	}

	// Selectors answer a numbered list; an index outside it gets the same
	// first-option treatment as a failed call.
	if resp.ChosenIndex < 0 || resp.ChosenIndex >= len(options) {
		e.logger.Warn("selector returned out-of-range index, defaulting to first option",
			"request_id", requestID,
			"parent", parent.FullCode(),
			"chosen_index", resp.ChosenIndex,
			"options", len(options))
		return options[0], &model.RefinementInfo{
			OriginalCode:     parent.FullCode(),
			Justification:    "selection out of range, first option taken",
			OptionsEvaluated: len(options),
		}, model.ConfidenceLow, nil
	}

	return options[resp.ChosenIndex], &model.RefinementInfo{
		OriginalCode:     parent.FullCode(),
		Justification:    resp.Justification,
		OptionsEvaluated: len(options),
		ChosenIndex:      resp.ChosenIndex,
		WasLLMAnalyzed:   true,
	}, resp.Confidence, nil
}

// refineCandidates replaces every non-terminal candidate with a chosen
// terminal child so scoring compares terminals only. Candidates with no
// terminal descendants are dropped.
func (e *Engine) refineCandidates(ctx context.Context, req Request, requestID string, candidates []model.Candidate) ([]model.Candidate, error) {
	refined := candidates[:0]
	for _, c := range candidates {
		if c.Position.RecordType == model.RecordTerminal {
			refined = append(refined, c)
			continue
		}

		options := e.catalog.ChildrenOf(c.Position.BaseCode)
		switch len(options) {
		case 0:
			continue
		case 1:
			refined = append(refined, model.Candidate{
				Position: options[0],
				Refinement: &model.RefinementInfo{
					OriginalCode:     c.Position.FullCode(),
					Justification:    "single terminal option under position",
					OptionsEvaluated: 1,
				},
				MatchType:  c.MatchType,
				Confidence: c.Confidence,
				Score:      c.Score,
			})
			continue
		}

		chosen, refinement, confidence, err := e.selectTerminal(ctx, req, requestID, c.Position, options)
		if err != nil {
			return nil, err
		}
		refined = append(refined, model.Candidate{
			Position:   chosen,
			Refinement: refinement,
			MatchType:  model.MatchDisambiguated,
			Confidence: confidence,
			Score:      c.Score,
		})
	}
	return refined, nil
}
