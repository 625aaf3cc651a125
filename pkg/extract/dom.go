package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rendimo/rendimo/pkg/listing"
)

// DOM is the lowest-confidence strategy: label-anchored scanning of the
// rendered page. Selector probes run before whole-text scans so values next
// to the ad's own labels beat numbers from unrelated widgets, and the merge
// order guarantees DOM results only ever fill gaps left by the structured
// strategies.
type DOM struct{}

func (DOM) Name() string { return "dom" }

// Plausibility windows for text-scanned values. Numbers outside these
// ranges are more likely page noise than listing attributes.
const (
	minSurface = 10
	maxSurface = 500
	minRooms   = 1
	maxRooms   = 10
)

var (
	priceTextRe   = regexp.MustCompile(`([\d][\d\s\x{00a0}\x{202f}]*)€`)
	surfaceRe     = regexp.MustCompile(`(\d+)\s*m²`)
	roomsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*pièces?`),
		regexp.MustCompile(`(?i)(\d+)\s*p\.`),
		regexp.MustCompile(`\bT(\d+)\b`),
	}
	postalRe = regexp.MustCompile(`\b(\d{5})\b`)
)

func (DOM) Extract(doc *goquery.Document) (listing.Partial, bool) {
	fields := make(listing.Partial)

	// Script and style content would pollute the text scan, so it runs on a
	// stripped clone; selector probes use the original document.
	clone := goquery.CloneDocument(doc)
	clone.Find("script, style, noscript").Remove()
	text := collapseSpaces(clone.Find("body").Text())

	extractTitle(doc, fields)
	extractPrice(doc, text, fields)
	extractSurface(text, fields)
	extractRooms(text, fields)
	extractLocation(doc, fields)
	extractPropertyType(text, fields)
	extractDescription(doc, fields)

	return fields, len(fields) > 0
}

func extractTitle(doc *goquery.Document, fields listing.Partial) {
	for _, sel := range []string{`[data-qa-id="adview_title"]`, "h1"} {
		if title := collapseSpaces(doc.Find(sel).First().Text()); title != "" {
			fields.Set(listing.FieldTitle, title)
			return
		}
	}
}

func extractPrice(doc *goquery.Document, text string, fields listing.Partial) {
	for _, sel := range []string{`[data-qa-id="adview_price"]`, `span[aria-label*="Prix"]`} {
		raw := doc.Find(sel).First().Text()
		if digits := digitsOnly(raw); len(digits) >= 4 {
			if price, err := strconv.ParseFloat(digits, 64); err == nil {
				fields.Set(listing.FieldPrice, price)
				return
			}
		}
	}

	// Fall back to the first currency-marked token with at least four
	// digits, which filters out per-month charges and fee amounts.
	for _, m := range priceTextRe.FindAllStringSubmatch(text, -1) {
		digits := digitsOnly(m[1])
		if len(digits) < 4 {
			continue
		}
		if price, err := strconv.ParseFloat(digits, 64); err == nil {
			fields.Set(listing.FieldPrice, price)
			return
		}
	}
}

func extractSurface(text string, fields listing.Partial) {
	for _, m := range surfaceRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= minSurface && n <= maxSurface {
			fields.Set(listing.FieldSurface, float64(n))
			return
		}
	}
}

func extractRooms(text string, fields listing.Partial) {
	for _, re := range roomsPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= minRooms && n <= maxRooms {
				fields.Set(listing.FieldRooms, n)
				return
			}
		}
	}
}

func extractLocation(doc *goquery.Document, fields listing.Partial) {
	loc := collapseSpaces(doc.Find(`[data-qa-id*="location"]`).First().Text())
	if loc == "" {
		return
	}

	if m := postalRe.FindStringSubmatch(loc); m != nil {
		fields.Set(listing.FieldPostalCode, m[1])
	}

	// Keep compound city names ("La Rochelle"); only drop a trailing
	// postal code.
	city := strings.TrimSpace(postalRe.ReplaceAllString(loc, ""))
	city = strings.Trim(city, " ,()")
	fields.Set(listing.FieldCity, city)
}

func extractPropertyType(text string, fields listing.Partial) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "maison"):
		fields.Set(listing.FieldPropertyType, "Maison")
	case strings.Contains(lower, "appartement"):
		fields.Set(listing.FieldPropertyType, "Appartement")
	case strings.Contains(lower, "studio"):
		fields.Set(listing.FieldPropertyType, "Studio")
	}
}

func extractDescription(doc *goquery.Document, fields listing.Partial) {
	for _, sel := range []string{`[data-qa-id="adview_description"]`, ".description"} {
		desc := collapseSpaces(doc.Find(sel).First().Text())
		if desc == "" {
			continue
		}
		if runes := []rune(desc); len(runes) > 500 {
			desc = string(runes[:500])
		}
		fields.Set(listing.FieldDescription, desc)
		return
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
