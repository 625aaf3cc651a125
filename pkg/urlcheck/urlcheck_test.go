package urlcheck

import (
	"errors"
	"testing"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v
}

func TestValidate_AcceptedURLs(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "classic sale path",
			in:   "https://www.leboncoin.fr/ventes_immobilieres/2451234567.htm",
			want: "https://www.leboncoin.fr/ventes_immobilieres/2451234567.htm",
		},
		{
			name: "ad prefix",
			in:   "https://www.leboncoin.fr/ad/ventes_immobilieres/2451234567",
			want: "https://www.leboncoin.fr/ad/ventes_immobilieres/2451234567",
		},
		{
			name: "new immobilier category",
			in:   "https://www.leboncoin.fr/ad/immobilier/2451234567",
			want: "https://www.leboncoin.fr/ad/immobilier/2451234567",
		},
		{
			name: "http upgraded to https",
			in:   "http://www.leboncoin.fr/ventes_immobilieres/123.htm",
			want: "https://www.leboncoin.fr/ventes_immobilieres/123.htm",
		},
		{
			name: "bare host accepted",
			in:   "https://leboncoin.fr/ventes_immobilieres/123.htm",
			want: "https://leboncoin.fr/ventes_immobilieres/123.htm",
		},
		{
			name: "uppercase host lowered",
			in:   "https://WWW.LeBonCoin.FR/ventes_immobilieres/123.htm",
			want: "https://www.leboncoin.fr/ventes_immobilieres/123.htm",
		},
		{
			name: "tracking query stripped",
			in:   "https://www.leboncoin.fr/ventes_immobilieres/123.htm?utm_source=mail&rank=3",
			want: "https://www.leboncoin.fr/ventes_immobilieres/123.htm",
		},
		{
			name: "fragment stripped",
			in:   "https://www.leboncoin.fr/ventes_immobilieres/123.htm#photos",
			want: "https://www.leboncoin.fr/ventes_immobilieres/123.htm",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  https://www.leboncoin.fr/ventes_immobilieres/123.htm  ",
			want: "https://www.leboncoin.fr/ventes_immobilieres/123.htm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.in)
			if err != nil {
				t.Fatalf("Validate(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate_RejectedURLs(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name   string
		in     string
		reason Reason
	}{
		{"empty string", "", ReasonNotAURL},
		{"not a url", "not a url at all", ReasonNotAURL},
		{"missing scheme", "www.leboncoin.fr/ventes_immobilieres/123.htm", ReasonNotAURL},
		{"unsupported scheme", "ftp://www.leboncoin.fr/ventes_immobilieres/123.htm", ReasonNotAURL},
		{"wrong host", "https://www.seloger.com/annonces/achat/123.htm", ReasonWrongHost},
		{"lookalike host", "https://leboncoin.fr.evil.example/ventes_immobilieres/123.htm", ReasonWrongHost},
		{"rental category", "https://www.leboncoin.fr/locations/123.htm", ReasonUnsupportedCategory},
		{"car listing", "https://www.leboncoin.fr/voitures/123.htm", ReasonUnsupportedCategory},
		{"search page", "https://www.leboncoin.fr/recherche?category=9", ReasonUnsupportedCategory},
		{"bare root", "https://www.leboncoin.fr/", ReasonUnsupportedCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.in)
			if err == nil {
				t.Fatalf("Validate(%q) accepted, want rejection %s", tt.in, tt.reason)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate(%q) error type = %T, want *ValidationError", tt.in, err)
			}
			if verr.Reason != tt.reason {
				t.Errorf("Validate(%q) reason = %s, want %s", tt.in, verr.Reason, tt.reason)
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := newValidator(t)

	first, err := v.Validate("HTTP://WWW.LEBONCOIN.FR/ventes_immobilieres/123.htm?x=1#top")
	if err != nil {
		t.Fatalf("first Validate() error = %v", err)
	}
	second, err := v.Validate(first)
	if err != nil {
		t.Fatalf("second Validate() error = %v", err)
	}
	if first != second {
		t.Errorf("normalization not idempotent: %q then %q", first, second)
	}
}

func TestValidate_PortPreserved(t *testing.T) {
	v, err := New(Config{
		Hosts:        []string{"127.0.0.1"},
		PathPatterns: []string{`^/ventes_immobilieres/`},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := v.Validate("http://127.0.0.1:8080/ventes_immobilieres/1.htm")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "https://127.0.0.1:8080/ventes_immobilieres/1.htm" {
		t.Errorf("Validate() = %q, want port preserved", got)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty config")
	}
	if _, err := New(Config{Hosts: []string{"a"}, PathPatterns: []string{"["}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
