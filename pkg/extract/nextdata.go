package extract

import (
	"encoding/json"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/rendimo/rendimo/pkg/listing"
)

// NextData extracts fields from the framework-injected state blob
// (<script id="__NEXT_DATA__">). The key path to the listing object is
// version-fragile, so the walk degrades to an empty partial set whenever an
// intermediate key is missing.
type NextData struct{}

func (NextData) Name() string { return "embedded" }

// Extract locates the injected state script, parses it, and walks
// props → pageProps → ad to the listing object.
func (NextData) Extract(doc *goquery.Document) (listing.Partial, bool) {
	fields := make(listing.Partial)

	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if raw == "" {
		// Some renderings use a triple underscore.
		raw = doc.Find("script#___NEXT_DATA__").First().Text()
	}
	if raw == "" {
		return fields, false
	}

	var state map[string]any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return fields, false
	}

	ad, ok := walk(state, "props", "pageProps", "ad")
	if !ok {
		return fields, false
	}
	adMap, ok := ad.(map[string]any)
	if !ok {
		return fields, false
	}

	mapAdFields(adMap, fields)
	return fields, true
}

// walk descends a nested map one key at a time, reporting "path not found"
// on the first missing or non-object segment instead of failing.
func walk(m map[string]any, path ...string) (any, bool) {
	var current any = m
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func mapAdFields(ad map[string]any, fields listing.Partial) {
	if subject, ok := ad["subject"].(string); ok {
		fields.Set(listing.FieldTitle, subject)
	}
	if body, ok := ad["body"].(string); ok {
		fields.Set(listing.FieldDescription, body)
	}

	if price, ok := adPrice(ad["price"]); ok {
		fields.Set(listing.FieldPrice, price)
	}

	if loc, ok := ad["location"].(map[string]any); ok {
		if city, ok := loc["city"].(string); ok {
			fields.Set(listing.FieldCity, city)
		}
		if zip, ok := loc["zipcode"].(string); ok {
			fields.Set(listing.FieldPostalCode, zip)
		}
	}

	switch id := ad["id"].(type) {
	case string:
		fields.Set(listing.FieldReference, id)
	case float64:
		fields.Set(listing.FieldReference, strconv.FormatInt(int64(id), 10))
	}

	attrs, _ := ad["attributes"].([]any)
	for _, item := range attrs {
		attr, ok := item.(map[string]any)
		if !ok {
			continue
		}
		key, _ := attr["key"].(string)
		mapAttribute(key, attr["value"], fields)
	}
}

// adPrice reads the price whether it is a bare number, a {value: n} object,
// or a single-element list.
func adPrice(v any) (float64, bool) {
	switch price := v.(type) {
	case float64:
		return price, price > 0
	case map[string]any:
		return adPrice(price["value"])
	case []any:
		if len(price) > 0 {
			return adPrice(price[0])
		}
	case string:
		if n, ok := firstInt(price); ok {
			return float64(n), n > 0
		}
	}
	return 0, false
}

// mapAttribute translates one entry of the ad's attributes list. Unknown
// keys are ignored.
func mapAttribute(key string, value any, fields listing.Partial) {
	switch key {
	case "square":
		if n, ok := attrNumber(value); ok {
			fields.Set(listing.FieldSurface, n)
		}
	case "rooms":
		if n, ok := attrNumber(value); ok {
			fields.Set(listing.FieldRooms, int(n))
		}
	case "bedrooms":
		if n, ok := attrNumber(value); ok {
			fields.Set(listing.FieldBedrooms, int(n))
		}
	case "land_plot_surface", "land":
		if n, ok := attrNumber(value); ok {
			fields.Set(listing.FieldLandSurface, n)
		}
	case "construction_year", "year":
		if n, ok := attrNumber(value); ok {
			fields.Set(listing.FieldYearBuilt, int(n))
		}
	case "energy_rate":
		if s, ok := value.(string); ok {
			fields.Set(listing.FieldEnergyClass, s)
		}
	case "ges":
		if s, ok := value.(string); ok {
			fields.Set(listing.FieldGESClass, s)
		}
	case "real_estate_type":
		if s, ok := value.(string); ok {
			fields.Set(listing.FieldPropertyType, s)
		}
	}
}

func attrNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, val > 0
	case string:
		if n, ok := firstInt(val); ok {
			return float64(n), n > 0
		}
	}
	return 0, false
}
