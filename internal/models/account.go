package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is the authoritative unit of mutation: every operation touches
// exactly one account, and the facade serializes access per owner. Accounts
// are created lazily on first reference and never deleted.
type BankAccount struct {
	OwnerID       string    `gorm:"type:varchar(64);primaryKey" json:"owner_id"`
	Frozen        bool      `gorm:"not null;default:false" json:"frozen"`
	FrozenReason  string    `gorm:"type:varchar(255)" json:"frozen_reason,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	LastActivity  time.Time `gorm:"not null" json:"last_activity"`
	LastKnownName string    `gorm:"type:varchar(64)" json:"last_known_name,omitempty"`

	Deposits []Deposit `gorm:"foreignKey:OwnerID;references:OwnerID" json:"deposits"`
	Loans    []Loan    `gorm:"foreignKey:OwnerID;references:OwnerID" json:"loans"`
}

func (a *BankAccount) TableName() string { return "accounts" }

// NewBankAccount creates a fresh, unfrozen account.
func NewBankAccount(owner string, now time.Time) *BankAccount {
	return &BankAccount{
		OwnerID:      owner,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch records owner activity.
func (a *BankAccount) Touch(now time.Time) {
	a.LastActivity = now
}

// SetFrozen freezes or unfreezes the account with an optional reason.
func (a *BankAccount) SetFrozen(frozen bool, reason string) {
	a.Frozen = frozen
	a.FrozenReason = reason
}

// AddDeposit appends a deposit, enforcing id uniqueness within the account.
func (a *BankAccount) AddDeposit(d *Deposit) error {
	if a.DepositByID(d.ID) != nil {
		return fmt.Errorf("duplicate deposit id %q on account %s", d.ID, a.OwnerID)
	}
	a.Deposits = append(a.Deposits, *d)
	a.Touch(d.StartDate)
	return nil
}

// AddLoan appends a loan, enforcing id uniqueness within the account.
func (a *BankAccount) AddLoan(l *Loan) error {
	if a.LoanByID(l.ID) != nil {
		return fmt.Errorf("duplicate loan id %q on account %s", l.ID, a.OwnerID)
	}
	a.Loans = append(a.Loans, *l)
	a.Touch(l.StartDate)
	return nil
}

// RemoveDeposit deletes a deposit by id, reporting whether it was present.
// Used to roll back an open whose wallet withdrawal failed.
func (a *BankAccount) RemoveDeposit(id string) bool {
	for i := range a.Deposits {
		if a.Deposits[i].ID == id {
			a.Deposits = append(a.Deposits[:i], a.Deposits[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveLoan deletes a loan by id, reporting whether it was present.
func (a *BankAccount) RemoveLoan(id string) bool {
	for i := range a.Loans {
		if a.Loans[i].ID == id {
			a.Loans = append(a.Loans[:i], a.Loans[i+1:]...)
			return true
		}
	}
	return false
}

// DepositByID returns a pointer into the owned slice, or nil.
func (a *BankAccount) DepositByID(id string) *Deposit {
	for i := range a.Deposits {
		if a.Deposits[i].ID == id {
			return &a.Deposits[i]
		}
	}
	return nil
}

// LoanByID returns a pointer into the owned slice, or nil.
func (a *BankAccount) LoanByID(id string) *Loan {
	for i := range a.Loans {
		if a.Loans[i].ID == id {
			return &a.Loans[i]
		}
	}
	return nil
}

// ActiveDeposits returns pointers to deposits still accruing interest.
func (a *BankAccount) ActiveDeposits() []*Deposit {
	var out []*Deposit
	for i := range a.Deposits {
		if a.Deposits[i].IsActive() {
			out = append(out, &a.Deposits[i])
		}
	}
	return out
}

// ActiveLoans returns pointers to loans still carrying a balance
// (ACTIVE and OVERDUE).
func (a *BankAccount) ActiveLoans() []*Loan {
	var out []*Loan
	for i := range a.Loans {
		if a.Loans[i].IsOpen() {
			out = append(out, &a.Loans[i])
		}
	}
	return out
}

// TotalDeposited sums the principal of active deposits.
func (a *BankAccount) TotalDeposited() decimal.Decimal {
	total := decimal.Zero
	for _, d := range a.ActiveDeposits() {
		total = total.Add(d.Amount)
	}
	return total
}

// TotalDebt sums the remaining balance of open loans.
func (a *BankAccount) TotalDebt() decimal.Decimal {
	total := decimal.Zero
	for _, l := range a.ActiveLoans() {
		total = total.Add(l.RemainingBalance)
	}
	return total
}
