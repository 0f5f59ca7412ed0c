package freight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comexar/despacho/internal/common"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEstimateAir(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		want   float64
	}{
		{name: "below first breakpoint", weight: 0.2, want: 45},
		{name: "exact breakpoint", weight: 5, want: 150},
		{name: "interpolated midpoint", weight: 1.5, want: 72.5},
		{name: "interpolated between 10 and 20", weight: 15, want: 320},
		{name: "extrapolated past table", weight: 150, want: 1500 + 50*13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EstimateAir(tt.weight)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got, 1e-9)
		})
	}
}

func TestEstimateAirRejectsNonPositiveWeight(t *testing.T) {
	_, err := EstimateAir(0)
	require.Error(t, err)
	_, err = EstimateAir(-3)
	require.Error(t, err)
}

func TestEstimateSea(t *testing.T) {
	got, err := EstimateSea(2.5)
	require.NoError(t, err)
	assert.InEpsilon(t, 225.0, got, 1e-9)

	// Tiny volume hits the minimum charge.
	got, err = EstimateSea(0.1)
	require.NoError(t, err)
	assert.InEpsilon(t, 90.0, got, 1e-9)

	_, err = EstimateSea(0)
	require.Error(t, err)
}

func TestTableCarrierPicksModeByDimension(t *testing.T) {
	c := NewTableCarrier()

	air, err := c.Quote(context.Background(), Shipment{WeightKG: 5})
	require.NoError(t, err)
	assert.Equal(t, "air-courier", air.Service)

	sea, err := c.Quote(context.Background(), Shipment{WeightKG: 5, VolumeM3: 2})
	require.NoError(t, err)
	assert.Equal(t, "sea-lcl", sea.Service)
	assert.InEpsilon(t, 180.0, sea.CostUSD, 1e-9)
}

type stubCarrier struct {
	name  string
	quote Quote
	err   error
}

func (s stubCarrier) Name() string { return s.name }
func (s stubCarrier) Quote(context.Context, Shipment) (Quote, error) {
	return s.quote, s.err
}

func TestCheapestPicksLowestQuote(t *testing.T) {
	carriers := []Carrier{
		stubCarrier{name: "a", quote: Quote{Carrier: "a", CostUSD: 120}},
		stubCarrier{name: "b", quote: Quote{Carrier: "b", CostUSD: 95}},
		stubCarrier{name: "c", err: errors.New("down")},
	}

	best, err := Cheapest(context.Background(), carriers, Shipment{WeightKG: 3})
	require.NoError(t, err)
	assert.Equal(t, "b", best.Carrier)
}

func TestCheapestAllUnavailable(t *testing.T) {
	carriers := []Carrier{
		stubCarrier{name: "a", err: errors.New("down")},
		stubCarrier{name: "b", err: errors.New("also down")},
	}

	_, err := Cheapest(context.Background(), carriers, Shipment{WeightKG: 3})
	require.ErrorIs(t, err, common.ErrNoQuotes)
}

func TestCheapestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Cheapest(ctx, []Carrier{NewTableCarrier()}, Shipment{WeightKG: 3})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCourierClientQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"service": "express", "total_usd": 132.5, "transit_days": 4}`))
	}))
	defer server.Close()

	c, err := NewFedEx(CourierConfig{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	quote, err := c.Quote(context.Background(), Shipment{OriginCountry: "US", WeightKG: 3})
	require.NoError(t, err)
	assert.Equal(t, "fedex", quote.Carrier)
	assert.InEpsilon(t, 132.5, quote.CostUSD, 1e-9)
	assert.Equal(t, 4, quote.TransitDays)
}

func TestCourierClientAPIErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewDHL(CourierConfig{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	_, err = c.Quote(context.Background(), Shipment{OriginCountry: "CN", WeightKG: 3})
	require.ErrorIs(t, err, common.ErrCarrierUnavailable)
}

func TestCourierClientRequiresAPIKey(t *testing.T) {
	_, err := NewFedEx(CourierConfig{}, testLogger())
	require.Error(t, err)
	_, err = NewDHL(CourierConfig{}, testLogger())
	require.Error(t, err)
}
