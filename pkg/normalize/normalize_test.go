package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/rendimo/rendimo/pkg/listing"
)

const sourceURL = "https://www.leboncoin.fr/ventes_immobilieres/123.htm"

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestNormalize_MergePriority(t *testing.T) {
	n := New(WithClock(fixedClock))

	structured := listing.Partial{listing.FieldPrice: 200000.0}
	embedded := listing.Partial{
		listing.FieldPrice:   199000.0, // must lose to the structured value
		listing.FieldSurface: 95.0,
	}
	dom := listing.Partial{listing.FieldRooms: 4}

	rec, err := n.Normalize([]listing.Partial{structured, embedded, dom}, sourceURL)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if rec.Price == nil || *rec.Price != 200000 {
		t.Errorf("price = %v, want 200000 from highest priority", rec.Price)
	}
	if rec.Surface == nil || *rec.Surface != 95 {
		t.Errorf("surface = %v, want 95", rec.Surface)
	}
	if rec.Rooms == nil || *rec.Rooms != 4 {
		t.Errorf("rooms = %v, want 4", rec.Rooms)
	}
	if !rec.ExtractedAt.Equal(fixedClock()) {
		t.Errorf("extracted_at = %v", rec.ExtractedAt)
	}
	if rec.SourceURL != sourceURL {
		t.Errorf("source_url = %q", rec.SourceURL)
	}
}

func TestNormalize_PricePerSqmAlwaysRecomputed(t *testing.T) {
	n := New()

	parts := []listing.Partial{{
		listing.FieldPrice:   240000.0,
		listing.FieldSurface: 60.0,
	}}

	rec, err := n.Normalize(parts, sourceURL)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if rec.PricePerSqm == nil || *rec.PricePerSqm != 4000 {
		t.Errorf("price_per_sqm = %v, want 4000", rec.PricePerSqm)
	}
}

func TestNormalize_PricePerSqmRounded(t *testing.T) {
	n := New()

	rec, err := n.Normalize([]listing.Partial{{
		listing.FieldPrice:   216000.0,
		listing.FieldSurface: 190.0,
	}}, sourceURL)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if rec.PricePerSqm == nil || *rec.PricePerSqm != 1136.84 {
		t.Errorf("price_per_sqm = %v, want 1136.84", rec.PricePerSqm)
	}
}

func TestNormalize_NoSurfaceNoPricePerSqm(t *testing.T) {
	n := New()

	rec, err := n.Normalize([]listing.Partial{{
		listing.FieldPrice: 150000.0,
		listing.FieldRooms: 3,
	}}, sourceURL)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if rec.PricePerSqm != nil {
		t.Errorf("price_per_sqm = %v, want nil without surface", *rec.PricePerSqm)
	}
}

func TestNormalize_UsabilityGate(t *testing.T) {
	n := New()

	tests := []struct {
		name   string
		parts  listing.Partial
		usable bool
	}{
		{"price and surface", listing.Partial{listing.FieldPrice: 100000.0, listing.FieldSurface: 50.0}, true},
		{"price and rooms", listing.Partial{listing.FieldPrice: 100000.0, listing.FieldRooms: 2}, true},
		{"price only", listing.Partial{listing.FieldPrice: 100000.0}, false},
		{"surface and rooms but no price", listing.Partial{listing.FieldSurface: 50.0, listing.FieldRooms: 2}, false},
		{"nothing", listing.Partial{}, false},
		{"title only", listing.Partial{listing.FieldTitle: "Maison"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize([]listing.Partial{tt.parts}, sourceURL)
			if tt.usable && err != nil {
				t.Errorf("Normalize() error = %v, want usable record", err)
			}
			if !tt.usable {
				if !errors.Is(err, ErrInsufficientData) {
					t.Errorf("Normalize() error = %v, want ErrInsufficientData", err)
				}
			}
		})
	}
}

func TestNormalize_StringCoercion(t *testing.T) {
	n := New()

	rec, err := n.Normalize([]listing.Partial{{
		listing.FieldPrice:   "108 000 €",
		listing.FieldSurface: "65 m²",
		listing.FieldRooms:   "3",
	}}, sourceURL)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if rec.Price == nil || *rec.Price != 108000 {
		t.Errorf("price = %v, want 108000", rec.Price)
	}
	if rec.Surface == nil || *rec.Surface != 65 {
		t.Errorf("surface = %v, want 65", rec.Surface)
	}
	if rec.Rooms == nil || *rec.Rooms != 3 {
		t.Errorf("rooms = %v, want 3", rec.Rooms)
	}
}

func TestNormalize_PostalCodeSanitized(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"clean", "24100", "24100"},
		{"country prefix", "F-24100", "24100"},
		{"inner space", "24 100", "24100"},
		{"too short dropped", "870", ""},
		{"too long dropped", "241000", ""},
		{"letters dropped", "ABCDE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := n.Normalize([]listing.Partial{{
				listing.FieldPrice:      216000.0,
				listing.FieldSurface:    190.0,
				listing.FieldPostalCode: tt.raw,
			}}, sourceURL)
			// A malformed optional field must never fail a record that
			// clears the gate.
			if err != nil {
				t.Fatalf("Normalize() error = %v, want record kept", err)
			}
			if rec.PostalCode != tt.want {
				t.Errorf("postal_code = %q, want %q", rec.PostalCode, tt.want)
			}
		})
	}
}

func TestNormalize_ImplausibleYearDropped(t *testing.T) {
	n := New()

	rec, err := n.Normalize([]listing.Partial{{
		listing.FieldPrice:     216000.0,
		listing.FieldSurface:   190.0,
		listing.FieldYearBuilt: 5, // mangled attribute value
	}}, sourceURL)
	if err != nil {
		t.Fatalf("Normalize() error = %v, want record kept", err)
	}
	if rec.YearBuilt != nil {
		t.Errorf("year_built = %v, want dropped", *rec.YearBuilt)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"108 000 €", 108000, true},
		{"108 000 €", 108000, true},
		{"1.250.000", 1250000, true},
		{"95 m²", 95, true},
		{"3200,50", 3200.50, true},
		{"3 200,5", 3200.5, true},
		{"216000", 216000, true},
		{"€", 0, false},
		{"", 0, false},
		{"prix sur demande", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
