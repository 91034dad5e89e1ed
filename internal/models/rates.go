package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

var daysPerYear = decimal.NewFromInt(365)

// TermYield is the interest earned over a deposit's whole term, as a fraction
// of principal. It is not an annual rate: a 0.03 yield on a 7-day plan pays 3%
// at maturity regardless of how long 7 game days take in wall time.
type TermYield struct {
	d decimal.Decimal
}

// NewTermYield wraps a decimal fraction as a term yield.
func NewTermYield(d decimal.Decimal) TermYield {
	return TermYield{d: d}
}

// TermYieldFromFloat wraps a float fraction as a term yield.
func TermYieldFromFloat(f float64) TermYield {
	return TermYield{d: decimal.NewFromFloat(f)}
}

// Decimal returns the underlying fraction.
func (y TermYield) Decimal() decimal.Decimal { return y.d }

// DailyRate spreads the term yield evenly over the term.
func (y TermYield) DailyRate(termDays int) decimal.Decimal {
	if termDays <= 0 {
		termDays = 1
	}
	return y.d.DivRound(decimal.NewFromInt(int64(termDays)), 8)
}

func (y TermYield) Equal(o TermYield) bool { return y.d.Equal(o.d) }
func (y TermYield) String() string         { return y.d.String() }

func (y TermYield) Value() (driver.Value, error) { return y.d.String(), nil }

func (y *TermYield) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("failed to scan term yield: %w", err)
	}
	y.d = d
	return nil
}

func (y TermYield) MarshalJSON() ([]byte, error) { return y.d.MarshalJSON() }

func (y *TermYield) UnmarshalJSON(data []byte) error {
	return y.d.UnmarshalJSON(data)
}

// AnnualRate is a true yearly interest rate. Daily accrual divides by 365
// game days, so the same rate costs the same regardless of term length.
type AnnualRate struct {
	d decimal.Decimal
}

// NewAnnualRate wraps a decimal fraction as an annual rate.
func NewAnnualRate(d decimal.Decimal) AnnualRate {
	return AnnualRate{d: d}
}

// AnnualRateFromFloat wraps a float fraction as an annual rate.
func AnnualRateFromFloat(f float64) AnnualRate {
	return AnnualRate{d: decimal.NewFromFloat(f)}
}

// Decimal returns the underlying fraction.
func (r AnnualRate) Decimal() decimal.Decimal { return r.d }

// DailyInterest returns one game day of interest on balance.
func (r AnnualRate) DailyInterest(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(r.d).DivRound(daysPerYear, 6)
}

func (r AnnualRate) Equal(o AnnualRate) bool { return r.d.Equal(o.d) }
func (r AnnualRate) String() string          { return r.d.String() }

func (r AnnualRate) Value() (driver.Value, error) { return r.d.String(), nil }

func (r *AnnualRate) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("failed to scan annual rate: %w", err)
	}
	r.d = d
	return nil
}

func (r AnnualRate) MarshalJSON() ([]byte, error) { return r.d.MarshalJSON() }

func (r *AnnualRate) UnmarshalJSON(data []byte) error {
	return r.d.UnmarshalJSON(data)
}
