package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction-type tags stamped on audit entries.
const (
	TxDepositOpen            = "deposit_open"
	TxDepositClose           = "deposit_close"
	TxDepositEarlyWithdrawal = "deposit_early_withdrawal"
	TxLoanTake               = "loan_take"
	TxLoanRepay              = "loan_repay"
	TxLoanDailyPayment       = "loan_daily_payment"
	TxLoanOverdue            = "loan_overdue"
	TxLoanDefault            = "loan_default"
	TxBalanceTax             = "balance_tax"
	TxFreeze                 = "freeze"
	TxUnfreeze               = "unfreeze"
)

// AuditLog is an immutable, append-only transaction record. Storage caps the
// per-owner history and evicts the oldest entries first.
type AuditLog struct {
	Seq       uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string          `gorm:"type:varchar(16);not null" json:"id"`
	OwnerID   string          `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	TxType    string          `gorm:"type:varchar(32);not null;index" json:"tx_type"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Detail    string          `gorm:"type:text" json:"detail"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
}

func (a *AuditLog) TableName() string { return "audit_logs" }
