// Package normalize merges partial extraction results into a validated
// listing record.
//
// It is the terminal step of the pipeline: merge by priority, coerce
// numeric-looking strings, compute derived fields, stamp provenance, and
// enforce the usability gate.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rendimo/rendimo/pkg/listing"
)

// ErrInsufficientData means fetch and parse succeeded but the merged record
// does not clear the usability gate (a price plus surface or rooms).
var ErrInsufficientData = errors.New("insufficient data")

// Normalizer merges and validates partial field sets.
type Normalizer struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// New returns a ready Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize merges the partial field sets (highest priority first) into a
// record for sourceURL. The derived price-per-m² is always recomputed here,
// never copied from a source, so mismatched units across strategies cannot
// leak through. Returns ErrInsufficientData when the usability gate fails.
func (n *Normalizer) Normalize(parts []listing.Partial, sourceURL string) (*listing.Record, error) {
	merged := listing.Merge(parts...)

	rec := &listing.Record{
		Title:        asString(merged[listing.FieldTitle]),
		Price:        asFloat(merged[listing.FieldPrice]),
		Surface:      asFloat(merged[listing.FieldSurface]),
		Rooms:        asInt(merged[listing.FieldRooms]),
		Bedrooms:     asInt(merged[listing.FieldBedrooms]),
		City:         asString(merged[listing.FieldCity]),
		PostalCode:   asString(merged[listing.FieldPostalCode]),
		LandSurface:  asFloat(merged[listing.FieldLandSurface]),
		YearBuilt:    asInt(merged[listing.FieldYearBuilt]),
		EnergyClass:  asString(merged[listing.FieldEnergyClass]),
		GESClass:     asString(merged[listing.FieldGESClass]),
		PropertyType: asString(merged[listing.FieldPropertyType]),
		Description:  asString(merged[listing.FieldDescription]),
		Reference:    asString(merged[listing.FieldReference]),
		SourceURL:    sourceURL,
		ExtractedAt:  n.now().UTC(),
	}

	// Optional fields are sanitized, never grounds for rejection: only the
	// gate fields below can fail a record.
	rec.PostalCode = cleanPostalCode(rec.PostalCode)
	if rec.YearBuilt != nil && *rec.YearBuilt < 1000 {
		rec.YearBuilt = nil
	}

	if rec.Price != nil && rec.Surface != nil && *rec.Surface > 0 {
		perSqm := math.Round(*rec.Price / *rec.Surface * 100) / 100
		rec.PricePerSqm = &perSqm
	}

	if err := n.validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, describe(err))
	}
	return rec, nil
}

// cleanPostalCode reduces a raw postal value to five digits, tolerating the
// separators and country prefixes sources emit verbatim ("24 100",
// "F-24100"). Anything else is dropped.
func cleanPostalCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() != 5 {
		return ""
	}
	return b.String()
}

// describe flattens validator errors into a short field list.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(missing, ", ")
}

// asFloat coerces a raw extracted value to a number, stripping locale
// thousand separators, currency symbols, and unit suffixes from strings.
// Returns nil for absent or unparsable values.
func asFloat(v any) *float64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		return positive(val)
	case int:
		return positive(float64(val))
	case int64:
		return positive(float64(val))
	case string:
		if f, ok := parseNumber(val); ok {
			return positive(f)
		}
	}
	return nil
}

func asInt(v any) *int {
	f := asFloat(v)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	if n <= 0 {
		return nil
	}
	return &n
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func positive(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}

// parseNumber handles French-formatted amounts: "108 000 €", "1.250.000",
// "95 m²", "3200,50".
func parseNumber(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return 0, false
	}

	// A trailing one-or-two-digit group after the last comma or dot is a
	// decimal separator; every other comma or dot is a thousands separator.
	stripSeps := strings.NewReplacer(",", "", ".", "")
	if i := strings.LastIndexAny(cleaned, ",."); i >= 0 && len(cleaned)-i-1 >= 1 && len(cleaned)-i-1 <= 2 {
		cleaned = stripSeps.Replace(cleaned[:i]) + "." + cleaned[i+1:]
	} else {
		cleaned = stripSeps.Replace(cleaned)
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
