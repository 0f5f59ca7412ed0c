package freight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/comexar/despacho/internal/common"
)

// courierClient quotes a shipment against a courier rating API. FedEx and
// DHL expose the same shape here; only endpoint and auth header differ.
type courierClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	name       string
	baseURL    string
	apiKey     string
	authHeader string
}

// CourierConfig configures one live courier integration.
type CourierConfig struct {
	BaseURL string
	APIKey  string
}

// NewFedEx creates a FedEx rating client.
func NewFedEx(cfg CourierConfig, logger *slog.Logger) (Carrier, error) {
	return newCourierClient("fedex", "https://apis.fedex.com/rate/v1/rates/quotes", "Authorization", cfg, logger)
}

// NewDHL creates a DHL Express rating client.
func NewDHL(cfg CourierConfig, logger *slog.Logger) (Carrier, error) {
	return newCourierClient("dhl", "https://express.api.dhl.com/mydhlapi/rates", "DHL-API-Key", cfg, logger)
}

func newCourierClient(name, defaultURL, authHeader string, cfg CourierConfig, logger *slog.Logger) (Carrier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &courierClient{
		name:       name,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		authHeader: authHeader,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (c *courierClient) Name() string { return c.name }

// Quote posts a rating request. Any transport or API failure wraps
// common.ErrCarrierUnavailable so Cheapest can skip this carrier.
func (c *courierClient) Quote(ctx context.Context, s Shipment) (Quote, error) {
	requestBody := map[string]any{
		"origin":      s.OriginCountry,
		"destination": "AR",
		"weight_kg":   s.WeightKG,
		"volume_m3":   s.VolumeM3,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return Quote{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authHeader == "Authorization" {
		req.Header.Set(c.authHeader, "Bearer "+c.apiKey)
	} else {
		req.Header.Set(c.authHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("courier request failed", "carrier", c.name, "error", err)
		return Quote{}, fmt.Errorf("%s: %v: %w", c.name, err, common.ErrCarrierUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("%s: failed to read response: %w", c.name, common.ErrCarrierUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("courier API error", "carrier", c.name, "status", resp.StatusCode)
		return Quote{}, fmt.Errorf("%s: API error (status %d): %w", c.name, resp.StatusCode, common.ErrCarrierUnavailable)
	}

	var rated struct {
		Service     string  `json:"service"`
		TotalUSD    float64 `json:"total_usd"`
		TransitDays int     `json:"transit_days"`
	}
	if err := json.Unmarshal(body, &rated); err != nil {
		return Quote{}, fmt.Errorf("%s: failed to parse response: %w", c.name, common.ErrCarrierUnavailable)
	}

	return Quote{
		Carrier:     c.name,
		Service:     rated.Service,
		CostUSD:     rated.TotalUSD,
		TransitDays: rated.TransitDays,
	}, nil
}
