// Package urlcheck validates and normalizes candidate listing URLs.
//
// Validation is purely syntactic: no network access happens here. A URL is
// accepted when its host matches the configured site and its path matches one
// of the configured listing path patterns.
package urlcheck

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Reason classifies why a URL was rejected.
type Reason string

const (
	ReasonNotAURL             Reason = "not_a_url"
	ReasonWrongHost           Reason = "wrong_host"
	ReasonUnsupportedCategory Reason = "unsupported_category"
)

// ValidationError is returned for rejected URLs.
type ValidationError struct {
	Reason Reason
	Input  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid listing URL %q: %s", e.Input, e.Reason)
}

// Config describes the accepted URL shape for one listing site.
type Config struct {
	// Hosts accepted for the listing site, compared case-insensitively.
	Hosts []string
	// PathPatterns are anchored regular expressions; a URL path must match
	// at least one to be accepted.
	PathPatterns []string
}

// DefaultConfig accepts LeBonCoin sale-listing URLs.
func DefaultConfig() Config {
	return Config{
		Hosts: []string{"www.leboncoin.fr", "leboncoin.fr"},
		PathPatterns: []string{
			`^/ventes_immobilieres/`,
			`^/ad/ventes_immobilieres/`,
			`^/ad/immobilier/`,
			`^/immobilier/`,
		},
	}
}

// Validator checks candidate URLs against a Config.
type Validator struct {
	hosts    map[string]bool
	patterns []*regexp.Regexp
}

// New compiles the config's path patterns into a Validator.
func New(cfg Config) (*Validator, error) {
	if len(cfg.Hosts) == 0 || len(cfg.PathPatterns) == 0 {
		return nil, fmt.Errorf("urlcheck: config needs at least one host and one path pattern")
	}

	hosts := make(map[string]bool, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		hosts[strings.ToLower(h)] = true
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.PathPatterns))
	for _, p := range cfg.PathPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("urlcheck: bad path pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	return &Validator{hosts: hosts, patterns: patterns}, nil
}

// Validate accepts or rejects a candidate URL. On acceptance it returns the
// normalized form: https scheme, lowercased host, query and fragment
// stripped. Normalization is idempotent: validating a normalized URL yields
// the same result.
func (v *Validator) Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &ValidationError{Reason: ReasonNotAURL, Input: raw}
	}

	host := strings.ToLower(u.Hostname())
	if !v.hosts[host] {
		return "", &ValidationError{Reason: ReasonWrongHost, Input: raw}
	}

	if !v.matchesPath(u.Path) {
		return "", &ValidationError{Reason: ReasonUnsupportedCategory, Input: raw}
	}

	normalized := url.URL{
		Scheme: "https",
		Host:   host,
		Path:   u.Path,
	}
	if u.Port() != "" {
		normalized.Host = host + ":" + u.Port()
	}
	return normalized.String(), nil
}

func (v *Validator) matchesPath(path string) bool {
	for _, re := range v.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
