// Package listing defines the canonical extracted listing record and the
// partial field sets produced by individual extraction strategies.
package listing

import "time"

// Field names a single attribute of a listing. Extractors key their partial
// results by Field so the merge step can distinguish "not found" from
// "found empty".
type Field string

// Target fields for all extraction strategies.
const (
	FieldTitle        Field = "title"
	FieldPrice        Field = "price"
	FieldSurface      Field = "surface"
	FieldRooms        Field = "rooms"
	FieldBedrooms     Field = "bedrooms"
	FieldCity         Field = "city"
	FieldPostalCode   Field = "postal_code"
	FieldLandSurface  Field = "land_surface"
	FieldYearBuilt    Field = "year_built"
	FieldEnergyClass  Field = "energy_class"
	FieldGESClass     Field = "ges_class"
	FieldPropertyType Field = "property_type"
	FieldDescription  Field = "description"
	FieldReference    Field = "reference"
)

// Partial maps field names to the raw values one extraction strategy found.
// Unset fields are simply absent, never nil-filled.
type Partial map[Field]any

// Set stores a value unless it is empty. Empty strings and non-positive
// numbers count as "not found" so they can never shadow a real value from a
// lower-priority strategy during merge.
func (p Partial) Set(f Field, v any) {
	switch val := v.(type) {
	case nil:
		return
	case string:
		if val == "" {
			return
		}
	case int:
		if val <= 0 {
			return
		}
	case int64:
		if val <= 0 {
			return
		}
	case float64:
		if val <= 0 {
			return
		}
	}
	p[f] = v
}

// Has reports whether the field was found by this strategy.
func (p Partial) Has(f Field) bool {
	_, ok := p[f]
	return ok
}

// Merge combines partial field sets in priority order, highest first.
// The first strategy to supply a field wins; later strategies only fill
// gaps, never overwrite.
func Merge(parts ...Partial) Partial {
	merged := make(Partial)
	for _, p := range parts {
		for f, v := range p {
			if !merged.Has(f) {
				merged[f] = v
			}
		}
	}
	return merged
}

// Record is the canonical output of one extraction. Optional numeric fields
// are pointers so an absent value is distinguishable from zero. A Record is
// never mutated after the normalizer emits it.
//
// The validate tags encode the usability gate and nothing more: a record
// needs a price and at least one of surface or rooms. Optional fields carry
// no tags — the normalizer sanitizes them, so a malformed postal code or
// year can never sink an otherwise usable record.
type Record struct {
	Title        string    `json:"title,omitempty" yaml:"title,omitempty"`
	Price        *float64  `json:"price,omitempty" yaml:"price,omitempty" validate:"required,gt=0"`
	Surface      *float64  `json:"surface,omitempty" yaml:"surface,omitempty" validate:"required_without=Rooms,omitempty,gt=0"`
	Rooms        *int      `json:"rooms,omitempty" yaml:"rooms,omitempty" validate:"required_without=Surface,omitempty,gte=1"`
	Bedrooms     *int      `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	City         string    `json:"city,omitempty" yaml:"city,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	LandSurface  *float64  `json:"land_surface,omitempty" yaml:"land_surface,omitempty"`
	YearBuilt    *int      `json:"year_built,omitempty" yaml:"year_built,omitempty"`
	EnergyClass  string    `json:"energy_class,omitempty" yaml:"energy_class,omitempty"`
	GESClass     string    `json:"ges_class,omitempty" yaml:"ges_class,omitempty"`
	PropertyType string    `json:"property_type,omitempty" yaml:"property_type,omitempty"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Reference    string    `json:"reference,omitempty" yaml:"reference,omitempty"`
	PricePerSqm  *float64  `json:"price_per_sqm,omitempty" yaml:"price_per_sqm,omitempty"`
	SourceURL    string    `json:"source_url" yaml:"source_url" validate:"required,url"`
	ExtractedAt  time.Time `json:"extracted_at" yaml:"extracted_at" validate:"required"`
}

// Attempt records how one extraction call went. It is returned alongside the
// record (or failure) and never persisted.
type Attempt struct {
	SourceURL  string   `json:"source_url"`
	Strategies []string `json:"strategies,omitempty"`
	HTTPStatus int      `json:"http_status,omitempty"`
	RetryCount int      `json:"retry_count"`
	Outcome    string   `json:"outcome"`
}
