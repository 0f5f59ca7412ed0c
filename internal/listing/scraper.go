// Package listing extracts product facts from e-commerce listing pages so
// they can be classified without retyping titles and prices.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/comexar/despacho/internal/model"
)

const userAgent = "Mozilla/5.0 (compatible; despacho/1.0)"

// Scraper fetches and parses listing pages.
type Scraper struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewScraper creates a listing scraper.
func NewScraper(logger *slog.Logger) *Scraper {
	return &Scraper{
		logger: logger,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Fetch downloads a listing page and extracts the product facts.
func (s *Scraper) Fetch(ctx context.Context, url string) (model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9,en;q=0.5")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.Product{}, fmt.Errorf("listing fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	product := s.Extract(doc)
	product.URL = url

	if product.Title == "" && product.Description == "" {
		return model.Product{}, fmt.Errorf("listing page carries no recognizable product data")
	}

	s.logger.Debug("listing scraped",
		"url", url,
		"title", product.Title,
		"price", product.UnitPrice,
		"currency", product.Currency)

	return product, nil
}

// Extract pulls product facts out of a parsed document. Open Graph and
// schema.org metadata first, visible markup as fallback.
func (s *Scraper) Extract(doc *goquery.Document) model.Product {
	p := model.Product{Units: 1}

	p.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("h1").First().Text()),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)

	p.Description = firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
		strings.TrimSpace(doc.Find(`[itemprop="description"]`).First().Text()),
	)

	p.ImageURL = firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		doc.Find(`[itemprop="image"]`).First().AttrOr("src", ""),
	)

	rawPrice := firstNonEmpty(
		metaContent(doc, `meta[property="og:price:amount"]`),
		metaContent(doc, `meta[property="product:price:amount"]`),
		doc.Find(`[itemprop="price"]`).First().AttrOr("content", ""),
	)
	if rawPrice != "" {
		if price, err := parsePrice(rawPrice); err == nil {
			p.UnitPrice = price
		} else {
			s.logger.Debug("unparseable listing price", "raw", rawPrice)
		}
	}

	p.Currency = firstNonEmpty(
		metaContent(doc, `meta[property="og:price:currency"]`),
		metaContent(doc, `meta[property="product:price:currency"]`),
		doc.Find(`[itemprop="priceCurrency"]`).First().AttrOr("content", ""),
	)

	return p
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parsePrice tolerates both decimal conventions and thousands separators.
func parsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimLeft(cleaned, "$USD ")

	// "1.234,56" style: dots are thousands, comma is decimal.
	if strings.Contains(cleaned, ",") && strings.Contains(cleaned, ".") && strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	// A lone dot separating exactly three trailing digits is a thousands
	// separator, not a decimal point.
	if idx := strings.LastIndex(cleaned, "."); idx != -1 && len(cleaned)-idx-1 == 3 && strings.Count(cleaned, ".") == 1 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	return strconv.ParseFloat(cleaned, 64)
}
