package extract

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"

	"github.com/rendimo/rendimo/pkg/listing"
)

// JSONLD extracts fields from schema.org structured data blocks
// (<script type="application/ld+json">). It is the highest-priority
// strategy: structured data, when present, is the page's own
// machine-readable description of the listing.
type JSONLD struct{}

// Schema types accepted as describing a real-estate listing.
var realEstateTypes = map[string]bool{
	"RealEstateListing":     true,
	"Product":               true,
	"Offer":                 true,
	"Residence":             true,
	"Apartment":             true,
	"House":                 true,
	"SingleFamilyResidence": true,
	"Accommodation":         true,
}

func (JSONLD) Name() string { return "structured" }

// Extract scans every JSON-LD block on the page and maps the first block
// with a recognized real-estate type. Malformed blocks are skipped, never
// fatal.
func (JSONLD) Extract(doc *goquery.Document) (listing.Partial, bool) {
	fields := make(listing.Partial)
	present := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, block := range decodeBlocks(s.Text()) {
			if !hasRealEstateType(block) {
				continue
			}
			present = true
			mapSchemaFields(block, fields)
			return false
		}
		return true
	})

	return fields, present
}

// decodeBlocks parses a script body that may hold a single object, an array
// of objects, or an object with an @graph list.
func decodeBlocks(raw string) []map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if graph, ok := obj["@graph"].([]any); ok {
			return anySliceToMaps(graph)
		}
		return []map[string]any{obj}
	}

	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return anySliceToMaps(arr)
	}
	return nil
}

func anySliceToMaps(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func hasRealEstateType(block map[string]any) bool {
	switch t := block["@type"].(type) {
	case string:
		return realEstateTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && realEstateTypes[s] {
				return true
			}
		}
	}
	return false
}

// mapSchemaFields applies the fixed schema.org-to-record dictionary.
func mapSchemaFields(block map[string]any, fields listing.Partial) {
	if name, ok := block["name"].(string); ok {
		fields.Set(listing.FieldTitle, name)
	}
	if desc, ok := block["description"].(string); ok {
		fields.Set(listing.FieldDescription, desc)
	}

	if price, ok := offerPrice(block["offers"]); ok {
		fields.Set(listing.FieldPrice, price)
	}

	if addr, ok := block["address"].(map[string]any); ok {
		if city, ok := addr["addressLocality"].(string); ok {
			fields.Set(listing.FieldCity, city)
		}
		if cp, ok := addr["postalCode"].(string); ok {
			fields.Set(listing.FieldPostalCode, cp)
		}
	}

	if surface, ok := quantity(block["floorSize"]); ok {
		fields.Set(listing.FieldSurface, surface)
	}
	if rooms, ok := quantity(block["numberOfRooms"]); ok {
		fields.Set(listing.FieldRooms, int(rooms))
	}
	if bedrooms, ok := quantity(block["numberOfBedrooms"]); ok {
		fields.Set(listing.FieldBedrooms, int(bedrooms))
	}
}

// offerPrice reads offers.price whether offers is an object or a list.
func offerPrice(v any) (float64, bool) {
	switch offers := v.(type) {
	case map[string]any:
		return quantity(offers["price"])
	case []any:
		for _, item := range offers {
			if m, ok := item.(map[string]any); ok {
				if price, ok := quantity(m["price"]); ok {
					return price, true
				}
			}
		}
	}
	return 0, false
}

// quantity coerces schema.org scalar shapes to a number: plain numbers,
// numeric strings, unit-suffixed strings ("95 m²"), and QuantitativeValue
// objects.
func quantity(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, val > 0
	case string:
		if n, ok := firstInt(val); ok {
			return float64(n), n > 0
		}
	case map[string]any:
		return quantity(val["value"])
	}
	return 0, false
}
