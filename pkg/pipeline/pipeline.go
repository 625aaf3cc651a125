// Package pipeline orchestrates one listing extraction: validate the URL,
// fetch the page, run the extraction strategies in priority order, and
// normalize the merged result.
//
// The flow is linear and synchronous. All three strategies always run —
// fallback is additive, not short-circuited — because real pages mix
// sources: structured data may supply the price while only the DOM carries
// the energy class. Pipelines are stateless between calls, so concurrent
// extractions need no coordination.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rendimo/rendimo/internal/logger"
	"github.com/rendimo/rendimo/pkg/extract"
	"github.com/rendimo/rendimo/pkg/fetch"
	"github.com/rendimo/rendimo/pkg/listing"
	"github.com/rendimo/rendimo/pkg/normalize"
	"github.com/rendimo/rendimo/pkg/urlcheck"
)

// Result is a successful extraction: the record plus how it was obtained.
type Result struct {
	Record  *listing.Record
	Attempt listing.Attempt
}

// Pipeline wires the extraction components together.
type Pipeline struct {
	validator  *urlcheck.Validator
	fetcher    fetch.Fetcher
	normalizer *normalize.Normalizer
	strategies []extract.Extractor
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithValidator replaces the default LeBonCoin URL validator.
func WithValidator(v *urlcheck.Validator) Option {
	return func(p *Pipeline) { p.validator = v }
}

// WithFetcher replaces the default static fetcher.
func WithFetcher(f fetch.Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Pipeline) { p.normalizer = n }
}

// New builds a pipeline. Without options it validates LeBonCoin URLs and
// fetches with the default retry policy.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		normalizer: normalize.New(),
		strategies: []extract.Extractor{extract.JSONLD{}, extract.NextData{}, extract.DOM{}},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.validator == nil {
		v, err := urlcheck.New(urlcheck.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		p.validator = v
	}
	if p.fetcher == nil {
		p.fetcher = fetch.NewStatic(fetch.DefaultRetryPolicy())
	}
	return p, nil
}

// Extract runs the full pipeline for one URL. Callers always receive either
// a Result or a *Error with a failure Kind; nothing panics past this
// boundary.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (*Result, error) {
	normalized, err := p.validator.Validate(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, Err: err}
	}
	log := logger.With("url", normalized)
	log.Debug("url accepted")

	page, err := p.fetcher.Fetch(ctx, normalized)
	if err != nil {
		var ferr *fetch.Error
		if errors.As(err, &ferr) {
			return nil, &Error{Kind: fetchKind(ferr.Kind), Err: err}
		}
		return nil, &Error{Kind: KindFetchNetworkError, Err: err}
	}
	log.Debug("page fetched", "status", page.StatusCode, "attempts", page.Attempts, "bytes", len(page.HTML))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, &Error{Kind: KindInsufficientData, Err: fmt.Errorf("unparsable HTML: %w", err)}
	}

	// Highest priority first; the merge in the normalizer is
	// first-writer-wins per field.
	parts := make([]listing.Partial, 0, len(p.strategies))
	var used []string
	for _, strategy := range p.strategies {
		fields, present := strategy.Extract(doc)
		parts = append(parts, fields)
		if present {
			used = append(used, strategy.Name())
		}
		log.Debug("strategy ran", "strategy", strategy.Name(), "present", present, "fields", len(fields))
	}

	record, err := p.normalizer.Normalize(parts, normalized)
	if err != nil {
		return nil, &Error{Kind: KindInsufficientData, Err: err}
	}

	log.Info("listing extracted", "strategies", strings.Join(used, ","))
	return &Result{
		Record: record,
		Attempt: listing.Attempt{
			SourceURL:  normalized,
			Strategies: used,
			HTTPStatus: page.StatusCode,
			RetryCount: page.Attempts - 1,
			Outcome:    "ok",
		},
	}, nil
}

// Close releases the fetcher's resources.
func (p *Pipeline) Close() error {
	return p.fetcher.Close()
}
