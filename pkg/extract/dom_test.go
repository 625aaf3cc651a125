package extract

import (
	"strings"
	"testing"

	"github.com/rendimo/rendimo/pkg/listing"
)

func TestDOM_Extract(t *testing.T) {
	doc := docFromTestdata(t, "dom.html")

	fields, present := DOM{}.Extract(doc)
	if !present {
		t.Fatal("expected DOM scan to find fields")
	}

	wantField(t, fields, listing.FieldTitle, "Maison de village 3 pièces 65 m²")
	wantField(t, fields, listing.FieldPrice, 108000.0)
	wantField(t, fields, listing.FieldSurface, 65.0)
	wantField(t, fields, listing.FieldRooms, 3)
	wantField(t, fields, listing.FieldCity, "Limoges")
	wantField(t, fields, listing.FieldPostalCode, "87000")
	wantField(t, fields, listing.FieldPropertyType, "Maison")

	desc, _ := fields[listing.FieldDescription].(string)
	if !strings.Contains(desc, "Maison de village rénovée") {
		t.Errorf("description = %q", desc)
	}
}

func TestDOM_Extract_ScriptContentIgnored(t *testing.T) {
	// The script holds a number that would be a plausible surface; the text
	// scan must not see it.
	doc := docFromString(t, `<html><head>
		<script>var layout = "450 m² canvas";</script>
	</head><body>
		<h1>Appartement 2 pièces</h1>
		<p>Surface de 48 m², prix 95 000 €</p>
	</body></html>`)

	fields, _ := DOM{}.Extract(doc)
	wantField(t, fields, listing.FieldSurface, 48.0)
	wantField(t, fields, listing.FieldPrice, 95000.0)
}

func TestDOM_Extract_PlausibilityWindows(t *testing.T) {
	// 5 m² is below the window, 1920 above it; 14 rooms is implausible.
	doc := docFromString(t, `<html><body>
		<h1>Local</h1>
		<p>cave de 5 m², écran 1920 m², 14 pièces</p>
	</body></html>`)

	fields, _ := DOM{}.Extract(doc)
	if fields.Has(listing.FieldSurface) {
		t.Errorf("implausible surfaces accepted: %v", fields[listing.FieldSurface])
	}
	if fields.Has(listing.FieldRooms) {
		t.Errorf("implausible room count accepted: %v", fields[listing.FieldRooms])
	}
}

func TestDOM_Extract_SmallAmountsNotPrices(t *testing.T) {
	// Three-digit amounts (fees, monthly charges) must not become the price.
	doc := docFromString(t, `<html><body>
		<p>Charges 120 € par mois. Prix de vente 142 500 €.</p>
	</body></html>`)

	fields, _ := DOM{}.Extract(doc)
	wantField(t, fields, listing.FieldPrice, 142500.0)
}

func TestDOM_Extract_RoomsFromTNotation(t *testing.T) {
	doc := docFromString(t, `<html><body><h1>Appartement T4 en centre-ville</h1></body></html>`)

	fields, _ := DOM{}.Extract(doc)
	wantField(t, fields, listing.FieldRooms, 4)
}

func TestDOM_Extract_TitleFallsBackToH1(t *testing.T) {
	doc := docFromString(t, `<html><body><h1>Maison mitoyenne</h1></body></html>`)

	fields, _ := DOM{}.Extract(doc)
	wantField(t, fields, listing.FieldTitle, "Maison mitoyenne")
}

func TestDOM_Extract_NonBreakingSpacesInPrice(t *testing.T) {
	doc := docFromString(t, "<html><body><p>Prix : 108 000 €</p></body></html>")

	fields, _ := DOM{}.Extract(doc)
	wantField(t, fields, listing.FieldPrice, 108000.0)
}

func TestDOM_Extract_EmptyPage(t *testing.T) {
	doc := docFromString(t, "<html><body></body></html>")

	fields, present := DOM{}.Extract(doc)
	if present {
		t.Errorf("empty page should report present=false, got fields %v", fields)
	}
}

func TestDOM_Extract_LongDescriptionTruncated(t *testing.T) {
	long := strings.Repeat("très agréable ", 100)
	doc := docFromString(t, `<html><body><div data-qa-id="adview_description">`+long+`</div></body></html>`)

	fields, _ := DOM{}.Extract(doc)
	desc, _ := fields[listing.FieldDescription].(string)
	if got := len([]rune(desc)); got > 500 {
		t.Errorf("description length = %d runes, want at most 500", got)
	}
}
