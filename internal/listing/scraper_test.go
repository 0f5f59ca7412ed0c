package listing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const listingHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Smart TV 40" | Tienda</title>
  <meta property="og:title" content="Smart TV LED 40 pulgadas Full HD">
  <meta property="og:description" content="Televisor LED 40 pulgadas con sintonizador digital">
  <meta property="og:image" content="https://cdn.example.com/tv.jpg">
  <meta property="og:price:amount" content="399.99">
  <meta property="og:price:currency" content="USD">
</head>
<body><h1>Smart TV LED 40</h1></body>
</html>`

func TestExtractFromOpenGraph(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	require.NoError(t, err)

	p := NewScraper(testLogger()).Extract(doc)

	assert.Equal(t, "Smart TV LED 40 pulgadas Full HD", p.Title)
	assert.Equal(t, "Televisor LED 40 pulgadas con sintonizador digital", p.Description)
	assert.Equal(t, "https://cdn.example.com/tv.jpg", p.ImageURL)
	assert.InEpsilon(t, 399.99, p.UnitPrice, 1e-9)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, 1, p.Units)
}

func TestExtractFallsBackToVisibleMarkup(t *testing.T) {
	html := `<html><head><title>Tienda</title></head>
	<body>
	  <h1>Medias deportivas de algodón</h1>
	  <span itemprop="price" content="12,50"></span>
	  <span itemprop="priceCurrency" content="ARS"></span>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	p := NewScraper(testLogger()).Extract(doc)

	assert.Equal(t, "Medias deportivas de algodón", p.Title)
	assert.InEpsilon(t, 12.5, p.UnitPrice, 1e-9)
	assert.Equal(t, "ARS", p.Currency)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	p, err := NewScraper(testLogger()).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, p.URL)
	assert.Equal(t, "Smart TV LED 40 pulgadas Full HD", p.Title)
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewScraper(testLogger()).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	defer server.Close()

	_, err := NewScraper(testLogger()).Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{raw: "399.99", want: 399.99},
		{raw: "12,50", want: 12.5},
		{raw: "1.234,56", want: 1234.56},
		{raw: "1.234", want: 1234},
		{raw: "USD 45.99", want: 45.99},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parsePrice(tt.raw)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got, 1e-9)
		})
	}

	_, err := parsePrice("precio a consultar")
	require.Error(t, err)
}
