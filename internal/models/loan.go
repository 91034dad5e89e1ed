package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/gametime"
)

// Loan statuses.
const (
	LoanStatusActive    = "ACTIVE"
	LoanStatusOverdue   = "OVERDUE"
	LoanStatusDefaulted = "DEFAULTED"
	LoanStatusPaid      = "PAID"
)

var (
	ErrInvalidLoanStatus     = errors.New("invalid loan status")
	ErrLoanNotRepayable      = errors.New("loan is not repayable")
	ErrIllegalLoanTransition = errors.New("illegal loan status transition")
)

// Loan is an amortizing debt. Unlike deposits, interest compounds directly
// into RemainingBalance: skipping payments makes the debt itself grow.
type Loan struct {
	OwnerID          string          `gorm:"type:varchar(64);primaryKey" json:"owner_id"`
	ID               string          `gorm:"type:varchar(16);primaryKey" json:"id"`
	Principal        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"principal"`
	Rate             AnnualRate      `gorm:"type:decimal(10,8);not null" json:"rate"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"remaining_balance"`
	TermDays         int             `gorm:"not null" json:"term_days"`
	StartDate        time.Time       `gorm:"not null" json:"start_date"`
	DueDate          time.Time       `gorm:"not null" json:"due_date"`
	TotalPaid        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_paid"`
	Collateral       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"collateral"`
	DailyPayment     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"daily_payment"`
	Status           string          `gorm:"type:varchar(16);not null;default:'ACTIVE'" json:"status"`
	MissedPayments   int             `gorm:"not null;default:0" json:"missed_payments"`
	LastPaymentDate  *time.Time      `json:"last_payment_date,omitempty"`
}

func (l *Loan) TableName() string { return "loans" }

// NewLoan issues a loan. The full principal is owed from day one; interest
// compounds on top during daily processing.
func NewLoan(id, owner string, principal decimal.Decimal, rate AnnualRate, termDays int, collateral decimal.Decimal, start time.Time, cal gametime.Calendar) *Loan {
	l := &Loan{
		OwnerID:          owner,
		ID:               id,
		Principal:        principal,
		Rate:             rate,
		RemainingBalance: principal,
		TermDays:         termDays,
		StartDate:        start,
		DueDate:          cal.AddDays(start, termDays),
		TotalPaid:        decimal.Zero,
		Collateral:       collateral,
		Status:           LoanStatusActive,
	}
	l.RecalculateDailyPayment(start, cal)
	return l
}

// IsOpen reports whether the loan still carries a balance to collect.
func (l *Loan) IsOpen() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusOverdue
}

// IsPastDue reports whether an ACTIVE loan has passed its due date.
func (l *Loan) IsPastDue(now time.Time) bool {
	return l.Status == LoanStatusActive && now.After(l.DueDate)
}

// DailyInterest returns one game day of interest on the remaining balance.
func (l *Loan) DailyInterest() decimal.Decimal {
	return l.Rate.DailyInterest(l.RemainingBalance).Round(2)
}

// AccrueInterest compounds one day of interest into the balance.
func (l *Loan) AccrueInterest() {
	l.RemainingBalance = l.RemainingBalance.Add(l.DailyInterest())
}

// ElapsedDays returns whole game days since issue.
func (l *Loan) ElapsedDays(now time.Time, cal gametime.Calendar) int {
	return cal.DaysSince(l.StartDate, now)
}

// DaysUntilDue returns whole game days until the due date, negative when
// already past due.
func (l *Loan) DaysUntilDue(now time.Time, cal gametime.Calendar) int {
	return cal.DaysBetween(now, l.DueDate)
}

// RecalculateDailyPayment spreads the remaining balance over the days left
// until due, rounding up so the schedule never undershoots.
func (l *Loan) RecalculateDailyPayment(now time.Time, cal gametime.Calendar) {
	daysLeft := l.DaysUntilDue(now, cal)
	if daysLeft < 1 {
		daysLeft = 1
	}
	l.DailyPayment = l.RemainingBalance.
		Div(decimal.NewFromInt(int64(daysLeft))).
		RoundCeil(2)
}

// ApplyPayment pays down the balance, capping at what remains. It returns the
// amount actually applied and whether the loan is now fully paid.
func (l *Loan) ApplyPayment(amount decimal.Decimal, now time.Time) (decimal.Decimal, bool, error) {
	if !l.IsOpen() {
		return decimal.Zero, false, fmt.Errorf("%w: status %s", ErrLoanNotRepayable, l.Status)
	}
	if !amount.IsPositive() {
		return decimal.Zero, false, fmt.Errorf("payment must be positive, got %s", amount)
	}

	actual := amount
	if actual.GreaterThan(l.RemainingBalance) {
		actual = l.RemainingBalance
	}

	l.RemainingBalance = l.RemainingBalance.Sub(actual)
	l.TotalPaid = l.TotalPaid.Add(actual)
	t := now
	l.LastPaymentDate = &t

	if l.RemainingBalance.IsZero() {
		l.Status = LoanStatusPaid
		l.DailyPayment = decimal.Zero
		return actual, true, nil
	}
	return actual, false, nil
}

// MarkOverdue transitions ACTIVE to OVERDUE and counts the miss.
func (l *Loan) MarkOverdue() error {
	if l.Status != LoanStatusActive {
		return fmt.Errorf("%w: %s -> OVERDUE", ErrIllegalLoanTransition, l.Status)
	}
	l.Status = LoanStatusOverdue
	l.MissedPayments++
	return nil
}

// MarkDefaulted transitions OVERDUE to DEFAULTED.
func (l *Loan) MarkDefaulted() error {
	if l.Status != LoanStatusOverdue {
		return fmt.Errorf("%w: %s -> DEFAULTED", ErrIllegalLoanTransition, l.Status)
	}
	l.Status = LoanStatusDefaulted
	return nil
}

// Validate checks structural invariants on a loaded record.
func (l *Loan) Validate() error {
	if l.ID == "" || l.OwnerID == "" {
		return fmt.Errorf("loan missing id or owner")
	}
	if !IsValidLoanStatus(l.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidLoanStatus, l.Status)
	}
	if l.Principal.IsNegative() || l.RemainingBalance.IsNegative() {
		return fmt.Errorf("loan has negative amount")
	}
	if l.TermDays <= 0 {
		return fmt.Errorf("loan term must be positive")
	}
	return nil
}

// IsValidLoanStatus reports whether s is a known loan status.
func IsValidLoanStatus(s string) bool {
	switch s {
	case LoanStatusActive, LoanStatusOverdue, LoanStatusDefaulted, LoanStatusPaid:
		return true
	}
	return false
}
