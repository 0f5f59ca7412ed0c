// Package oracle wraps the LLM providers used for tariff classification:
// the initial-estimate call and the sibling disambiguation call. Responses
// are schema-validated JSON, and transport failures are a distinguishable
// error type so the engine can tell "the oracle said low confidence" apart
// from "the oracle is unreachable".
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/comexar/despacho/internal/common"
	"github.com/comexar/despacho/internal/model"
)

// Estimator produces an initial tariff-code estimate for a product.
type Estimator interface {
	EstimateCode(ctx context.Context, req EstimateRequest) (EstimateResponse, error)
}

// Selector picks the best-fitting option from a labeled candidate list.
type Selector interface {
	SelectOption(ctx context.Context, req SelectRequest) (SelectResponse, error)
}

// EstimateRequest carries the product facts sent to the estimate oracle.
type EstimateRequest struct {
	Description string
	ImageURL    string
}

// Alternative is a runner-up code the oracle considered plausible.
type Alternative struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// EstimateResponse is the oracle's initial classification estimate.
type EstimateResponse struct {
	EstimatedCode   string                `json:"estimated_code"`
	Justification   string                `json:"justification"`
	Confidence      model.ConfidenceLevel `json:"confidence"`
	Alternatives    []Alternative         `json:"alternatives,omitempty"`
	NeedsDeepSearch bool                  `json:"needs_deep_search"`
}

// SelectOptionItem is one labeled choice offered to the selection oracle.
type SelectOptionItem struct {
	Label       string
	Description string
	DutyRate    float64
}

// SelectRequest frames a disambiguation question.
type SelectRequest struct {
	ParentContext string
	Description   string
	Options       []SelectOptionItem
}

// SelectResponse is the oracle's pick, zero-based.
type SelectResponse struct {
	Justification string                `json:"justification"`
	Confidence    model.ConfidenceLevel `json:"confidence"`
	ChosenIndex   int                   `json:"chosen_index"`
}

// provider is the raw completion surface implemented per vendor.
type provider interface {
	complete(ctx context.Context, system, user, imageURL string) (string, error)
}

// TransportError marks network/auth failures against the oracle, as opposed
// to well-formed answers the caller may simply distrust.
type TransportError struct {
	Err      error
	Provider string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s oracle: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{common.ErrOracleTransport, e.Err}
}

// IsTransportError reports whether err is an oracle transport failure.
func IsTransportError(err error) bool {
	return errors.Is(err, common.ErrOracleTransport)
}

// statusError maps a non-200 provider response to a sentinel-tagged error.
func statusError(status int, body []byte) error {
	switch status {
	case 401, 403:
		return fmt.Errorf("API error (status %d): %w", status, common.ErrOracleAuth)
	case 429:
		return fmt.Errorf("API error (status %d): %w", status, common.ErrRateLimit)
	default:
		return fmt.Errorf("API error (status %d): %s", status, truncate(string(body), 200))
	}
}
