package yield

import (
	"errors"
	"testing"
)

func TestGross(t *testing.T) {
	res, err := Gross(120000, 650)
	if err != nil {
		t.Fatalf("Gross() error = %v", err)
	}

	if res.GrossYield != 6.5 {
		t.Errorf("gross yield = %v, want 6.5", res.GrossYield)
	}
	if res.AnnualRent != 7800 {
		t.Errorf("annual rent = %v, want 7800", res.AnnualRent)
	}
	if res.Rating != RatingGood {
		t.Errorf("rating = %s, want %s", res.Rating, RatingGood)
	}
}

func TestGross_Rounding(t *testing.T) {
	// 700 × 12 / 216000 × 100 = 3.888...
	res, err := Gross(216000, 700)
	if err != nil {
		t.Fatalf("Gross() error = %v", err)
	}
	if res.GrossYield != 3.89 {
		t.Errorf("gross yield = %v, want 3.89", res.GrossYield)
	}
}

func TestGross_InvalidInputs(t *testing.T) {
	if _, err := Gross(0, 650); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("zero price error = %v, want ErrInvalidPrice", err)
	}
	if _, err := Gross(-1, 650); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price error = %v, want ErrInvalidPrice", err)
	}
	if _, err := Gross(120000, 0); !errors.Is(err, ErrInvalidRent) {
		t.Errorf("zero rent error = %v, want ErrInvalidRent", err)
	}
}

func TestRate_Bands(t *testing.T) {
	tests := []struct {
		gross float64
		want  Rating
	}{
		{9.1, RatingExcellent},
		{8, RatingExcellent},
		{7.99, RatingGood},
		{6, RatingGood},
		{5, RatingFair},
		{4, RatingFair},
		{3, RatingWeak},
		{2, RatingWeak},
		{1.5, RatingPoor},
		{0.1, RatingPoor},
	}
	for _, tt := range tests {
		if got := rate(tt.gross); got != tt.want {
			t.Errorf("rate(%v) = %s, want %s", tt.gross, got, tt.want)
		}
	}
}
