// Package extract implements the listing extraction strategies.
//
// Each strategy reads an already-fetched HTML document and produces the
// subset of listing fields its source can supply. Strategies never fail:
// a page without a usable source yields an empty partial set, and it is the
// normalizer's usability gate that decides whether the combined result is
// sufficient.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rendimo/rendimo/pkg/listing"
)

// Extractor is one extraction strategy. The boolean reports whether the
// strategy's source was present on the page at all, which is distinct from
// whether any fields were mapped.
type Extractor interface {
	Name() string
	Extract(doc *goquery.Document) (listing.Partial, bool)
}

var digitsRe = regexp.MustCompile(`\d+`)

// firstInt pulls the first integer token out of a string such as "95 m²".
func firstInt(s string) (int, bool) {
	m := digitsRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// collapseSpaces joins all whitespace runs, including non-breaking and
// narrow non-breaking spaces, into single regular spaces.
func collapseSpaces(s string) string {
	s = strings.NewReplacer(" ", " ", " ", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
