package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/comexar/despacho/internal/common"
	"github.com/comexar/despacho/internal/model"
)

// Config holds configuration for the oracle client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// Oracle implements Estimator and Selector on top of a vendor provider,
// with caching, rate limiting and retry.
type Oracle struct {
	provider    provider
	cache       *estimateCache
	rateLimiter *rateLimiter
	logger      *slog.Logger
	retryOpts   common.RetryOptions
}

// New creates an oracle client for the configured provider.
func New(cfg Config, logger *slog.Logger) (*Oracle, error) {
	var p provider
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		p, err = newOpenAIProvider(cfg)
	case "anthropic":
		p, err = newAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle provider: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Oracle{
		provider:    p,
		cache:       newEstimateCache(cfg.CacheTTL),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger:      logger,
		retryOpts:   retryOpts,
	}, nil
}

// EstimateCode asks the oracle for an initial tariff code estimate.
func (o *Oracle) EstimateCode(ctx context.Context, req EstimateRequest) (EstimateResponse, error) {
	key := cacheKey(req.Description, req.ImageURL)
	if cached, found := o.cache.get(key); found {
		o.logger.Debug("estimate cache hit", "description", truncate(req.Description, 60))
		return cached, nil
	}

	if err := o.rateLimiter.wait(ctx); err != nil {
		return EstimateResponse{}, fmt.Errorf("rate limit error: %w", err)
	}

	prompt := buildEstimatePrompt(req)

	var resp EstimateResponse
	err := common.WithRetry(ctx, func() error {
		raw, callErr := o.provider.complete(ctx, estimateSystemPrompt, prompt, req.ImageURL)
		if callErr != nil {
			o.logger.Warn("estimate attempt failed", "error", callErr)
			return &common.RetryableError{Err: callErr, Retryable: true}
		}

		parsed, parseErr := parseEstimate(raw)
		if parseErr != nil {
			o.logger.Warn("invalid estimate payload", "error", parseErr)
			return &common.RetryableError{Err: parseErr, Retryable: true}
		}
		resp = parsed
		return nil
	}, o.retryOpts)
	if err != nil {
		return EstimateResponse{}, err
	}

	o.cache.set(key, resp)

	o.logger.Info("initial estimate obtained",
		"code", resp.EstimatedCode,
		"confidence", resp.Confidence,
		"needs_deep_search", resp.NeedsDeepSearch)

	return resp, nil
}

// SelectOption asks the oracle to choose among labeled candidates.
func (o *Oracle) SelectOption(ctx context.Context, req SelectRequest) (SelectResponse, error) {
	if len(req.Options) == 0 {
		return SelectResponse{}, fmt.Errorf("no options to select from")
	}

	if err := o.rateLimiter.wait(ctx); err != nil {
		return SelectResponse{}, fmt.Errorf("rate limit error: %w", err)
	}

	prompt := buildSelectPrompt(req)

	var resp SelectResponse
	err := common.WithRetry(ctx, func() error {
		raw, callErr := o.provider.complete(ctx, selectSystemPrompt, prompt, "")
		if callErr != nil {
			o.logger.Warn("selection attempt failed", "error", callErr)
			return &common.RetryableError{Err: callErr, Retryable: true}
		}

		parsed, parseErr := parseSelection(raw, len(req.Options))
		if parseErr != nil {
			o.logger.Warn("invalid selection payload", "error", parseErr)
			return &common.RetryableError{Err: parseErr, Retryable: true}
		}
		resp = parsed
		return nil
	}, o.retryOpts)
	if err != nil {
		return SelectResponse{}, err
	}

	o.logger.Info("option selected",
		"chosen_index", resp.ChosenIndex,
		"confidence", resp.Confidence)

	return resp, nil
}

// Close stops background goroutines and cleans up resources.
func (o *Oracle) Close() error {
	if o.cache != nil {
		o.cache.Close()
	}
	if o.rateLimiter != nil {
		o.rateLimiter.Close()
	}
	return nil
}

// parseEstimate validates and decodes an estimate payload.
func parseEstimate(raw string) (EstimateResponse, error) {
	if err := validateEstimate(raw); err != nil {
		return EstimateResponse{}, err
	}

	var resp EstimateResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return EstimateResponse{}, fmt.Errorf("decode estimate: %w", err)
	}
	resp.Confidence = normalizeConfidence(string(resp.Confidence))
	return resp, nil
}

// parseSelection validates and decodes a selection payload. The oracle
// answers with a 1-based index matching the numbered option list; callers
// get it back 0-based.
func parseSelection(raw string, optionCount int) (SelectResponse, error) {
	if err := validateSelection(raw); err != nil {
		return SelectResponse{}, err
	}

	var resp SelectResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return SelectResponse{}, fmt.Errorf("decode selection: %w", err)
	}
	resp.ChosenIndex--
	if resp.ChosenIndex < 0 || resp.ChosenIndex >= optionCount {
		return SelectResponse{}, fmt.Errorf("chosen index %d out of range (have %d options)", resp.ChosenIndex+1, optionCount)
	}
	resp.Confidence = normalizeConfidence(string(resp.Confidence))
	return resp, nil
}

// normalizeConfidence tolerates the Spanish labels the customs prompts tend
// to elicit alongside the canonical English ones.
func normalizeConfidence(s string) model.ConfidenceLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "alta":
		return model.ConfidenceHigh
	case "medium", "media":
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
	}
	return strings.TrimSpace(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
