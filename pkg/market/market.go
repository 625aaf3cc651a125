// Package market supplies a €/m² baseline for comparing a listing against
// its local market.
//
// The primary source is the DVF open-data API (recorded French property
// sales). When the API is unreachable or the commune has too few recent
// transactions, a built-in national reference table answers instead, with a
// lower reliability score.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rendimo/rendimo/internal/logger"
)

// Property types after normalization.
const (
	TypeApartment = "apartment"
	TypeHouse     = "house"
	TypeOther     = "other"
)

// Estimate is the market baseline for one commune and property type.
type Estimate struct {
	PricePerSqm      int    `json:"price_per_sqm"`
	Source           string `json:"source"`
	ReliabilityScore int    `json:"reliability_score"`
	DataPeriod       string `json:"data_period"`
	TransactionCount int    `json:"transaction_count"`
}

// Comparison relates a listing's price to the market baseline.
type Comparison struct {
	PropertyPricePerSqm float64 `json:"property_price_per_sqm"`
	MarketPricePerSqm   float64 `json:"market_price_per_sqm"`
	PercentDifference   float64 `json:"percent_difference"`
	Verdict             string  `json:"verdict"`
}

// Config holds the client's endpoints and limits.
type Config struct {
	// DVFURL is the explore v2.1 records endpoint for the DVF dataset.
	DVFURL string
	// GeoURL is the communes endpoint used to resolve INSEE codes.
	GeoURL string
	// Timeout bounds each API request.
	Timeout time.Duration
	// CacheTTL bounds how long an estimate is reused. Zero disables expiry.
	CacheTTL time.Duration
	// MinTransactions is the sample size below which the reference table
	// answers instead of DVF. Defaults to 3.
	MinTransactions int
}

// DefaultConfig points at the public French open-data endpoints.
func DefaultConfig() Config {
	return Config{
		DVFURL:          "https://data.economie.gouv.fr/api/explore/v2.1/catalog/datasets/dvf/records",
		GeoURL:          "https://geo.api.gouv.fr/communes",
		Timeout:         10 * time.Second,
		CacheTTL:        time.Hour,
		MinTransactions: 3,
	}
}

// Client queries market prices. Safe for concurrent use; the only shared
// state is its own estimate cache.
type Client struct {
	cfg  Config
	http *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	estimate Estimate
	storedAt time.Time
}

// New builds a market client.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.DVFURL == "" {
		cfg.DVFURL = def.DVFURL
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = def.GeoURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MinTransactions <= 0 {
		cfg.MinTransactions = def.MinTransactions
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: make(map[string]cacheEntry),
	}
}

// Estimate returns the €/m² baseline for a city. postalCode is optional and
// improves commune resolution; propertyType accepts French or English names
// ("maison", "appartement", "house", ...).
func (c *Client) Estimate(ctx context.Context, city, postalCode, propertyType string) (Estimate, error) {
	propType := NormalizeType(propertyType)

	cacheKey := strings.ToLower(city) + ":" + postalCode + ":" + propType
	if est, ok := c.cached(cacheKey); ok {
		return est, nil
	}

	est, err := c.estimateDVF(ctx, city, postalCode, propType)
	if err != nil {
		logger.Debug("dvf estimate unavailable, using reference table", "city", city, "error", err)
		est = referenceEstimate(city, propType)
	}

	c.store(cacheKey, est)
	return est, nil
}

func (c *Client) estimateDVF(ctx context.Context, city, postalCode, propType string) (Estimate, error) {
	insee, err := c.resolveINSEE(ctx, city, postalCode)
	if err != nil {
		return Estimate{}, err
	}

	sales, period, err := c.recentSales(ctx, insee, propType)
	if err != nil {
		return Estimate{}, err
	}
	if len(sales) < c.cfg.MinTransactions {
		return Estimate{}, fmt.Errorf("only %d DVF transactions for %s", len(sales), city)
	}

	var sum float64
	for _, s := range sales {
		sum += s.price / s.surface
	}
	avg := sum / float64(len(sales))

	return Estimate{
		PricePerSqm:      int(math.Round(avg)),
		Source:           fmt.Sprintf("DVF - %s (%s)", city, insee),
		ReliabilityScore: reliability(len(sales)),
		DataPeriod:       period,
		TransactionCount: len(sales),
	}, nil
}

// resolveINSEE looks a commune's INSEE code up via the géo API.
func (c *Client) resolveINSEE(ctx context.Context, city, postalCode string) (string, error) {
	params := url.Values{"nom": {city}, "limit": {"1"}}
	if postalCode != "" {
		params.Set("codePostal", postalCode)
	}

	var communes []struct {
		Nom  string `json:"nom"`
		Code string `json:"code"`
	}
	if err := c.getJSON(ctx, c.cfg.GeoURL+"?"+params.Encode(), &communes); err != nil {
		return "", fmt.Errorf("commune lookup: %w", err)
	}
	if len(communes) == 0 || communes[0].Code == "" {
		return "", fmt.Errorf("commune %q not found", city)
	}
	return communes[0].Code, nil
}

type sale struct {
	price   float64
	surface float64
}

// recentSales queries DVF over a 24-month window, widening to 36 months
// when the sample is too small.
func (c *Client) recentSales(ctx context.Context, insee, propType string) ([]sale, string, error) {
	sales, err := c.queryDVF(ctx, insee, propType, 24)
	if err == nil && len(sales) >= c.cfg.MinTransactions {
		return sales, "24 months", nil
	}

	wider, werr := c.queryDVF(ctx, insee, propType, 36)
	if werr != nil {
		if err != nil {
			return nil, "", err
		}
		return sales, "24 months", nil
	}
	return wider, "36 months", nil
}

func (c *Client) queryDVF(ctx context.Context, insee, propType string, months int) ([]sale, error) {
	typeLocal := "Appartement"
	if propType == TypeHouse {
		typeLocal = "Maison"
	}
	cutoff := time.Now().AddDate(0, -months, 0).Format("2006-01-02")

	var sales []sale
	for _, code := range expandINSEE(insee) {
		params := url.Values{
			"select": {"valeur_fonciere,surface_reelle_bati,date_mutation"},
			"where": {fmt.Sprintf(`code_commune=%q AND nature_mutation="Vente" AND type_local=%q AND date_mutation>=%q`,
				code, typeLocal, cutoff)},
			"limit": {"100"},
		}

		var page struct {
			Results []struct {
				ValeurFonciere    float64 `json:"valeur_fonciere"`
				SurfaceReelleBati float64 `json:"surface_reelle_bati"`
			} `json:"results"`
		}
		if err := c.getJSON(ctx, c.cfg.DVFURL+"?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("dvf query: %w", err)
		}

		for _, rec := range page.Results {
			// Outliers and garage-sized lots would skew the mean.
			if rec.ValeurFonciere > 1000 && rec.SurfaceReelleBati >= 10 && rec.SurfaceReelleBati <= 500 {
				sales = append(sales, sale{price: rec.ValeurFonciere, surface: rec.SurfaceReelleBati})
			}
		}
	}
	return sales, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) cached(key string) (Estimate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok {
		return Estimate{}, false
	}
	if c.cfg.CacheTTL > 0 && time.Since(entry.storedAt) > c.cfg.CacheTTL {
		delete(c.cache, key)
		return Estimate{}, false
	}
	return entry.estimate, true
}

func (c *Client) store(key string, est Estimate) {
	c.mu.Lock()
	c.cache[key] = cacheEntry{estimate: est, storedAt: time.Now()}
	c.mu.Unlock()
}

// Compare relates a listing's €/m² to a market estimate.
func Compare(price, surface float64, est Estimate) (Comparison, error) {
	if surface <= 0 {
		return Comparison{}, fmt.Errorf("surface must be positive")
	}
	if est.PricePerSqm <= 0 {
		return Comparison{}, fmt.Errorf("market estimate has no price")
	}

	propertyPerSqm := price / surface
	marketPerSqm := float64(est.PricePerSqm)
	diff := (propertyPerSqm - marketPerSqm) / marketPerSqm * 100

	return Comparison{
		PropertyPricePerSqm: round2(propertyPerSqm),
		MarketPricePerSqm:   marketPerSqm,
		PercentDifference:   round2(diff),
		Verdict:             verdict(diff),
	}, nil
}

func verdict(diff float64) string {
	switch {
	case diff <= -15:
		return "well below market"
	case diff <= -5:
		return "below market"
	case diff <= 5:
		return "around market"
	case diff <= 15:
		return "above market"
	default:
		return "well above market"
	}
}

// NormalizeType maps French and English property type names onto the DVF
// categories.
func NormalizeType(propertyType string) string {
	switch strings.ToLower(strings.TrimSpace(propertyType)) {
	case "maison", "house":
		return TypeHouse
	case "appartement", "apartment", "studio", "":
		return TypeApartment
	default:
		return TypeOther
	}
}

func reliability(transactions int) int {
	switch {
	case transactions >= 50:
		return 95
	case transactions >= 20:
		return 85
	case transactions >= 10:
		return 75
	default:
		return 65
	}
}

// expandINSEE substitutes arrondissement codes for the Paris, Lyon, and
// Marseille commune codes, since DVF records sales per arrondissement.
func expandINSEE(insee string) []string {
	switch insee {
	case "75056": // Paris
		codes := make([]string, 0, 20)
		for i := 1; i <= 20; i++ {
			codes = append(codes, fmt.Sprintf("751%02d", i))
		}
		return codes
	case "69123": // Lyon
		codes := make([]string, 0, 9)
		for i := 1; i <= 9; i++ {
			codes = append(codes, fmt.Sprintf("6938%d", i))
		}
		return codes
	case "13055": // Marseille
		codes := make([]string, 0, 16)
		for i := 1; i <= 16; i++ {
			codes = append(codes, fmt.Sprintf("132%02d", i))
		}
		return codes
	default:
		return []string{insee}
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
