package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/gametime"
)

// Deposit statuses.
const (
	DepositStatusActive    = "ACTIVE"
	DepositStatusMatured   = "MATURED"
	DepositStatusWithdrawn = "WITHDRAWN"
)

// DepositPlan describes one product on offer. Plans come from configuration;
// a deposit snapshots its plan's terms at open time, so later config changes
// never touch running deposits.
type DepositPlan struct {
	Name      string          `json:"name"`
	TermDays  int             `json:"term_days"`
	BaseRate  TermYield       `json:"base_rate"`
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`
}

// Deposit is a fixed-term deposit. Interest accrues into AccruedInterest and
// the principal stays untouched until payout.
type Deposit struct {
	OwnerID         string          `gorm:"type:varchar(64);primaryKey" json:"owner_id"`
	ID              string          `gorm:"type:varchar(16);primaryKey" json:"id"`
	PlanName        string          `gorm:"type:varchar(32);not null" json:"plan_name"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Rate            TermYield       `gorm:"type:decimal(10,8);not null" json:"rate"`
	TermDays        int             `gorm:"not null" json:"term_days"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	MaturityDate    time.Time       `gorm:"not null" json:"maturity_date"`
	AccruedInterest decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"accrued_interest"`
	EarlyPenalty    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"early_penalty"`
	Status          string          `gorm:"type:varchar(16);not null;default:'ACTIVE'" json:"status"`
}

func (d *Deposit) TableName() string { return "deposits" }

// NewDeposit opens a deposit with the plan terms snapshotted in.
func NewDeposit(id, owner, planName string, amount decimal.Decimal, rate TermYield, termDays int, start time.Time, cal gametime.Calendar) *Deposit {
	return &Deposit{
		OwnerID:         owner,
		ID:              id,
		PlanName:        planName,
		Amount:          amount,
		Rate:            rate,
		TermDays:        termDays,
		StartDate:       start,
		MaturityDate:    cal.AddDays(start, termDays),
		AccruedInterest: decimal.Zero,
		EarlyPenalty:    decimal.Zero,
		Status:          DepositStatusActive,
	}
}

// IsActive reports whether the deposit is still accruing interest.
func (d *Deposit) IsActive() bool { return d.Status == DepositStatusActive }

// IsMatured reports whether the maturity date has been reached.
func (d *Deposit) IsMatured(now time.Time) bool {
	return !now.Before(d.MaturityDate)
}

// DailyInterest returns one game day's accrual: the term yield spread evenly
// over the term, applied to the principal.
func (d *Deposit) DailyInterest() decimal.Decimal {
	return d.Amount.Mul(d.Rate.DailyRate(d.TermDays)).Round(2)
}

// Accrue adds one day of interest.
func (d *Deposit) Accrue() {
	d.AccruedInterest = d.AccruedInterest.Add(d.DailyInterest())
}

// ElapsedDays returns whole game days since the deposit opened.
func (d *Deposit) ElapsedDays(now time.Time, cal gametime.Calendar) int {
	return cal.DaysSince(d.StartDate, now)
}

// TotalPayout is principal plus everything accrued so far.
func (d *Deposit) TotalPayout() decimal.Decimal {
	return d.Amount.Add(d.AccruedInterest)
}

// EarlyPayout is principal plus accrual minus penalty, floored at zero.
func (d *Deposit) EarlyPayout(penalty decimal.Decimal) decimal.Decimal {
	payout := d.TotalPayout().Sub(penalty)
	if payout.IsNegative() {
		return decimal.Zero
	}
	return payout
}

// Mature closes the deposit at term with the full payout.
func (d *Deposit) Mature() {
	if d.Status == DepositStatusActive {
		d.Status = DepositStatusMatured
	}
}

// Withdraw closes the deposit before term, recording the penalty charged.
func (d *Deposit) Withdraw(penalty decimal.Decimal) {
	d.EarlyPenalty = penalty
	d.Status = DepositStatusWithdrawn
}

// Validate checks structural invariants on a loaded record.
func (d *Deposit) Validate() error {
	if d.ID == "" || d.OwnerID == "" {
		return fmt.Errorf("deposit missing id or owner")
	}
	if !IsValidDepositStatus(d.Status) {
		return fmt.Errorf("invalid deposit status %q", d.Status)
	}
	if d.Amount.IsNegative() || d.AccruedInterest.IsNegative() {
		return fmt.Errorf("deposit has negative amount")
	}
	if d.TermDays <= 0 {
		return fmt.Errorf("deposit term must be positive")
	}
	return nil
}

// IsValidDepositStatus reports whether s is a known deposit status.
func IsValidDepositStatus(s string) bool {
	switch s {
	case DepositStatusActive, DepositStatusMatured, DepositStatusWithdrawn:
		return true
	}
	return false
}
