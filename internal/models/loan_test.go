package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoan(t *testing.T, principal float64, rate float64, termDays int, start time.Time) *Loan {
	t.Helper()
	return NewLoan("loan0001", "steve",
		decimal.NewFromFloat(principal), AnnualRateFromFloat(rate), termDays,
		decimal.NewFromFloat(principal*0.2), start, testCal)
}

func TestNewLoan(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLoan(t, 3000, 0.10, 30, start)

	assert.Equal(t, LoanStatusActive, l.Status)
	assert.True(t, l.RemainingBalance.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, testCal.AddDays(start, 30), l.DueDate)
	// 3000 spread over 30 days.
	assert.True(t, l.DailyPayment.Equal(decimal.NewFromInt(100)),
		"got %s", l.DailyPayment)
	assert.True(t, l.IsOpen())
	assert.False(t, l.IsPastDue(start))
	assert.True(t, l.IsPastDue(testCal.AddDays(start, 31)))
}

func TestLoanDailyInterestCompounds(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLoan(t, 3650, 0.10, 30, start)

	// 3650 * 0.10 / 365 = 1.00 per day.
	assert.True(t, l.DailyInterest().Equal(decimal.NewFromInt(1)))

	l.AccrueInterest()
	assert.True(t, l.RemainingBalance.Equal(decimal.NewFromInt(3651)))

	// The next day's interest is computed on the grown balance.
	l.AccrueInterest()
	assert.True(t, l.RemainingBalance.GreaterThan(decimal.NewFromInt(3651)))
}

func TestLoanRecalculateDailyPayment(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLoan(t, 3000, 0.10, 30, start)

	// Halfway through the term the remaining balance spreads over fewer days.
	l.RemainingBalance = decimal.NewFromInt(1500)
	l.RecalculateDailyPayment(testCal.AddDays(start, 15), testCal)
	assert.True(t, l.DailyPayment.Equal(decimal.NewFromInt(100)),
		"got %s", l.DailyPayment)

	// Past due, everything is owed in a single day.
	l.RecalculateDailyPayment(testCal.AddDays(start, 40), testCal)
	assert.True(t, l.DailyPayment.Equal(decimal.NewFromInt(1500)))

	// Rounding goes up so the schedule covers the full balance.
	l.RemainingBalance = decimal.NewFromFloat(1000)
	l.RecalculateDailyPayment(testCal.AddDays(start, 23), testCal)
	assert.True(t, l.DailyPayment.Equal(decimal.NewFromFloat(142.86)),
		"got %s", l.DailyPayment)
}

func TestLoanApplyPayment(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := testCal.AddDays(start, 1)

	t.Run("partial payment", func(t *testing.T) {
		l := newTestLoan(t, 3000, 0.10, 30, start)

		actual, paid, err := l.ApplyPayment(decimal.NewFromInt(500), now)
		require.NoError(t, err)
		assert.False(t, paid)
		assert.True(t, actual.Equal(decimal.NewFromInt(500)))
		assert.True(t, l.RemainingBalance.Equal(decimal.NewFromInt(2500)))
		assert.True(t, l.TotalPaid.Equal(decimal.NewFromInt(500)))
		require.NotNil(t, l.LastPaymentDate)
		assert.Equal(t, now, *l.LastPaymentDate)
	})

	t.Run("overpayment caps at remaining balance", func(t *testing.T) {
		l := newTestLoan(t, 3000, 0.10, 30, start)

		actual, paid, err := l.ApplyPayment(decimal.NewFromInt(9999), now)
		require.NoError(t, err)
		assert.True(t, paid)
		assert.True(t, actual.Equal(decimal.NewFromInt(3000)))
		assert.Equal(t, LoanStatusPaid, l.Status)
		assert.True(t, l.RemainingBalance.IsZero())
		assert.True(t, l.DailyPayment.IsZero())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		l := newTestLoan(t, 3000, 0.10, 30, start)

		_, _, err := l.ApplyPayment(decimal.Zero, now)
		assert.Error(t, err)
	})

	t.Run("rejects payment on closed loan", func(t *testing.T) {
		l := newTestLoan(t, 3000, 0.10, 30, start)
		_, _, err := l.ApplyPayment(decimal.NewFromInt(3000), now)
		require.NoError(t, err)

		_, _, err = l.ApplyPayment(decimal.NewFromInt(1), now)
		assert.ErrorIs(t, err, ErrLoanNotRepayable)
	})
}

func TestLoanStatusTransitions(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLoan(t, 3000, 0.10, 30, start)

	// ACTIVE -> DEFAULTED skips OVERDUE and must be rejected.
	assert.ErrorIs(t, l.MarkDefaulted(), ErrIllegalLoanTransition)

	require.NoError(t, l.MarkOverdue())
	assert.Equal(t, LoanStatusOverdue, l.Status)
	assert.Equal(t, 1, l.MissedPayments)
	assert.True(t, l.IsOpen())

	assert.ErrorIs(t, l.MarkOverdue(), ErrIllegalLoanTransition)

	require.NoError(t, l.MarkDefaulted())
	assert.Equal(t, LoanStatusDefaulted, l.Status)
	assert.False(t, l.IsOpen())
}

func TestLoanValidate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*Loan)
		wantErr bool
	}{
		{"valid", func(l *Loan) {}, false},
		{"missing owner", func(l *Loan) { l.OwnerID = "" }, true},
		{"unknown status", func(l *Loan) { l.Status = "PENDING" }, true},
		{"negative balance", func(l *Loan) { l.RemainingBalance = decimal.NewFromInt(-5) }, true},
		{"zero term", func(l *Loan) { l.TermDays = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoan(t, 3000, 0.10, 30, start)
			tt.mutate(l)

			err := l.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
