package oracle

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comexar/despacho/internal/common"
	"github.com/comexar/despacho/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseEstimate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode string
		wantConf model.ConfidenceLevel
		wantErr  bool
	}{
		{
			name:     "valid payload",
			raw:      `{"estimated_code": "8528.72.00", "justification": "smart TV, GRI 1", "confidence": "high", "needs_deep_search": true}`,
			wantCode: "8528.72.00",
			wantConf: model.ConfidenceHigh,
		},
		{
			name:     "spanish confidence labels are folded",
			raw:      `{"estimated_code": "6115.95.00", "confidence": "alta", "needs_deep_search": false}`,
			wantCode: "6115.95.00",
			wantConf: model.ConfidenceHigh,
		},
		{
			name:     "markdown fences stripped",
			raw:      "```json\n{\"estimated_code\": \"0901.21.00\", \"confidence\": \"media\"}\n```",
			wantCode: "0901.21.00",
			wantConf: model.ConfidenceMedium,
		},
		{
			name:    "missing code rejected by schema",
			raw:     `{"confidence": "high"}`,
			wantErr: true,
		},
		{
			name:    "unknown confidence rejected by schema",
			raw:     `{"estimated_code": "8528.72.00", "confidence": "maybe"}`,
			wantErr: true,
		},
		{
			name:    "not JSON at all",
			raw:     "the code is probably 8528.72.00",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseEstimate(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.EstimatedCode)
			assert.Equal(t, tt.wantConf, resp.Confidence)
		})
	}
}

func TestParseEstimateAlternatives(t *testing.T) {
	raw := `{
		"estimated_code": "8528.72.00",
		"confidence": "medium",
		"needs_deep_search": true,
		"alternatives": [{"code": "8528.71.00", "reason": "if without display"}]
	}`

	resp, err := parseEstimate(raw)
	require.NoError(t, err)
	require.Len(t, resp.Alternatives, 1)
	assert.Equal(t, "8528.71.00", resp.Alternatives[0].Code)
	assert.True(t, resp.NeedsDeepSearch)
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		optionCount int
		wantIndex   int
		wantErr     bool
	}{
		{
			name:        "first option",
			raw:         `{"chosen_index": 1, "justification": "cotton knit", "confidence": "high"}`,
			optionCount: 3,
			wantIndex:   0,
		},
		{
			name:        "last option",
			raw:         `{"chosen_index": 3, "confidence": "media"}`,
			optionCount: 3,
			wantIndex:   2,
		},
		{
			name:        "index past option count",
			raw:         `{"chosen_index": 4, "confidence": "high"}`,
			optionCount: 3,
			wantErr:     true,
		},
		{
			name:        "zero index rejected by schema",
			raw:         `{"chosen_index": 0, "confidence": "high"}`,
			optionCount: 3,
			wantErr:     true,
		},
		{
			name:        "missing index rejected by schema",
			raw:         `{"justification": "no pick"}`,
			optionCount: 3,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseSelection(tt.raw, tt.optionCount)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, resp.ChosenIndex)
		})
	}
}

func TestNormalizeConfidence(t *testing.T) {
	assert.Equal(t, model.ConfidenceHigh, normalizeConfidence("high"))
	assert.Equal(t, model.ConfidenceHigh, normalizeConfidence(" Alta "))
	assert.Equal(t, model.ConfidenceMedium, normalizeConfidence("media"))
	assert.Equal(t, model.ConfidenceLow, normalizeConfidence("baja"))
	assert.Equal(t, model.ConfidenceLow, normalizeConfidence("garbage"))
	assert.Equal(t, model.ConfidenceLow, normalizeConfidence(""))
}

func TestEstimateCache(t *testing.T) {
	cache := newEstimateCache(time.Hour)
	defer cache.Close()

	key := cacheKey("smart tv 40 inch", "")
	_, found := cache.get(key)
	assert.False(t, found)

	resp := EstimateResponse{EstimatedCode: "8528.72.00", Confidence: model.ConfidenceHigh}
	cache.set(key, resp)

	got, found := cache.get(key)
	require.True(t, found)
	assert.Equal(t, "8528.72.00", got.EstimatedCode)
	assert.Equal(t, 1, cache.size())

	// Different image URL must produce a different key.
	assert.NotEqual(t, key, cacheKey("smart tv 40 inch", "https://example.com/tv.jpg"))
}

func TestEstimateCacheExpiry(t *testing.T) {
	cache := newEstimateCache(time.Nanosecond)
	defer cache.Close()

	key := cacheKey("perishable", "")
	cache.set(key, EstimateResponse{EstimatedCode: "0901.21.00"})

	time.Sleep(5 * time.Millisecond)

	_, found := cache.get(key)
	assert.False(t, found)
}

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "bard", APIKey: "x"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported oracle provider")
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{Provider: "openai"}, testLogger())
	require.Error(t, err)

	_, err = New(Config{Provider: "anthropic"}, testLogger())
	require.Error(t, err)
}

func TestTransportErrorDetection(t *testing.T) {
	err := &TransportError{Err: assert.AnError, Provider: "openai"}
	assert.True(t, IsTransportError(err))
	assert.False(t, IsTransportError(assert.AnError))
	assert.Contains(t, err.Error(), "openai oracle")
}

func TestStatusErrorSentinels(t *testing.T) {
	assert.ErrorIs(t, statusError(401, nil), common.ErrOracleAuth)
	assert.ErrorIs(t, statusError(403, nil), common.ErrOracleAuth)
	assert.ErrorIs(t, statusError(429, nil), common.ErrRateLimit)
	assert.Contains(t, statusError(500, []byte("upstream down")).Error(), "status 500")

	wrapped := &TransportError{Err: statusError(401, nil), Provider: "anthropic"}
	assert.True(t, IsTransportError(wrapped))
	assert.ErrorIs(t, wrapped, common.ErrOracleAuth)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
