package extract

import (
	"testing"

	"github.com/rendimo/rendimo/pkg/listing"
)

func TestNextData_Extract(t *testing.T) {
	doc := docFromTestdata(t, "nextdata.html")

	fields, present := NextData{}.Extract(doc)
	if !present {
		t.Fatal("expected injected state to be detected")
	}

	wantField(t, fields, listing.FieldTitle, "Appartement T3 lumineux")
	wantField(t, fields, listing.FieldPrice, 185000.0)
	wantField(t, fields, listing.FieldSurface, 64.0)
	wantField(t, fields, listing.FieldRooms, 3)
	wantField(t, fields, listing.FieldBedrooms, 2)
	wantField(t, fields, listing.FieldYearBuilt, 1998)
	wantField(t, fields, listing.FieldCity, "Rennes")
	wantField(t, fields, listing.FieldPostalCode, "35000")
	wantField(t, fields, listing.FieldEnergyClass, "D")
	wantField(t, fields, listing.FieldGESClass, "B")
	wantField(t, fields, listing.FieldPropertyType, "Appartement")
	wantField(t, fields, listing.FieldReference, "2451234567")
}

func TestNextData_Extract_MissingScript(t *testing.T) {
	doc := docFromString(t, "<html><body><p>rien</p></body></html>")
	fields, present := NextData{}.Extract(doc)
	if present || len(fields) != 0 {
		t.Errorf("expected empty result, got present=%v fields=%v", present, fields)
	}
}

func TestNextData_Extract_TripleUnderscoreFallback(t *testing.T) {
	doc := docFromString(t, `<html><body>
		<script id="___NEXT_DATA__" type="application/json">
		{"props":{"pageProps":{"ad":{"subject":"Maison","price":120000}}}}
		</script>
	</body></html>`)

	fields, present := NextData{}.Extract(doc)
	if !present {
		t.Fatal("triple-underscore id should be accepted")
	}
	wantField(t, fields, listing.FieldPrice, 120000.0)
}

func TestNextData_Extract_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing pageProps", `{"props":{}}`},
		{"ad is a list", `{"props":{"pageProps":{"ad":[1,2]}}}`},
		{"not json", `{{{`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docFromString(t, `<html><body><script id="__NEXT_DATA__">`+tt.json+`</script></body></html>`)
			fields, present := NextData{}.Extract(doc)
			if present {
				t.Error("present should be false when the ad path is not walkable")
			}
			if len(fields) != 0 {
				t.Errorf("expected no fields, got %v", fields)
			}
		})
	}
}

func TestAdPrice_Shapes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"bare number", 185000.0, 185000, true},
		{"value object", map[string]any{"value": 185000.0}, 185000, true},
		{"single-element list", []any{map[string]any{"value": 185000.0}}, 185000, true},
		{"string", "185000", 185000, true},
		{"empty list", []any{}, 0, false},
		{"zero", 0.0, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := adPrice(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("adPrice(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMapAttribute_UnknownKeyIgnored(t *testing.T) {
	fields := make(listing.Partial)
	mapAttribute("custom_ref", "ABC", fields)
	mapAttribute("", nil, fields)
	if len(fields) != 0 {
		t.Errorf("unknown attributes must not produce fields, got %v", fields)
	}
}
