// Package yield computes rental profitability metrics from an extracted
// listing and an estimated rent.
package yield

import (
	"errors"
	"math"
)

// Sentinel errors for invalid inputs.
var (
	ErrInvalidPrice = errors.New("purchase price must be positive")
	ErrInvalidRent  = errors.New("monthly rent must be positive")
)

// Rating is a qualitative band for a gross yield.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingWeak      Rating = "weak"
	RatingPoor      Rating = "poor"
)

// Result holds the gross yield computation.
type Result struct {
	GrossYield    float64 `json:"gross_yield"`
	AnnualRent    float64 `json:"annual_rent"`
	MonthlyRent   float64 `json:"monthly_rent"`
	PurchasePrice float64 `json:"purchase_price"`
	Rating        Rating  `json:"rating"`
}

// Gross computes the gross rental yield:
//
//	gross = annual rent / purchase price × 100
func Gross(purchasePrice, monthlyRent float64) (Result, error) {
	if purchasePrice <= 0 {
		return Result{}, ErrInvalidPrice
	}
	if monthlyRent <= 0 {
		return Result{}, ErrInvalidRent
	}

	annual := monthlyRent * 12
	gross := round2(annual / purchasePrice * 100)

	return Result{
		GrossYield:    gross,
		AnnualRent:    round2(annual),
		MonthlyRent:   round2(monthlyRent),
		PurchasePrice: round2(purchasePrice),
		Rating:        rate(gross),
	}, nil
}

func rate(gross float64) Rating {
	switch {
	case gross >= 8:
		return RatingExcellent
	case gross >= 6:
		return RatingGood
	case gross >= 4:
		return RatingFair
	case gross >= 2:
		return RatingWeak
	default:
		return RatingPoor
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
