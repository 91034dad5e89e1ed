package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountAddAndLookup(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewBankAccount("steve", start)

	d := newTestDeposit(t, 1000, 0.03, 7, start)
	require.NoError(t, a.AddDeposit(d))
	assert.Error(t, a.AddDeposit(d), "duplicate deposit id must be rejected")

	l := newTestLoan(t, 3000, 0.10, 30, start)
	require.NoError(t, a.AddLoan(l))
	assert.Error(t, a.AddLoan(l), "duplicate loan id must be rejected")

	assert.NotNil(t, a.DepositByID(d.ID))
	assert.Nil(t, a.DepositByID("nope"))
	assert.NotNil(t, a.LoanByID(l.ID))
	assert.Nil(t, a.LoanByID("nope"))
}

func TestAccountActiveFilters(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewBankAccount("steve", start)

	open := newTestDeposit(t, 1000, 0.03, 7, start)
	require.NoError(t, a.AddDeposit(open))

	closed := newTestDeposit(t, 500, 0.03, 7, start)
	closed.ID = "dep00002"
	closed.Withdraw(decimal.Zero)
	require.NoError(t, a.AddDeposit(closed))

	active := newTestLoan(t, 3000, 0.10, 30, start)
	require.NoError(t, a.AddLoan(active))

	paid := newTestLoan(t, 500, 0.10, 30, start)
	paid.ID = "loan0002"
	_, _, err := paid.ApplyPayment(decimal.NewFromInt(500), start)
	require.NoError(t, err)
	require.NoError(t, a.AddLoan(paid))

	overdue := newTestLoan(t, 200, 0.10, 30, start)
	overdue.ID = "loan0003"
	require.NoError(t, overdue.MarkOverdue())
	require.NoError(t, a.AddLoan(overdue))

	assert.Len(t, a.ActiveDeposits(), 1)
	assert.Len(t, a.ActiveLoans(), 2, "OVERDUE loans still carry a balance")

	assert.True(t, a.TotalDeposited().Equal(decimal.NewFromInt(1000)))
	assert.True(t, a.TotalDebt().Equal(decimal.NewFromInt(3200)))
}

func TestAccountActivePointersMutateOwnedSlice(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewBankAccount("steve", start)
	require.NoError(t, a.AddDeposit(newTestDeposit(t, 1000, 0.03, 7, start)))

	// Daily processing mutates through these pointers; the change must land
	// in the account's own slice, not a copy.
	for _, d := range a.ActiveDeposits() {
		d.Accrue()
	}
	assert.False(t, a.Deposits[0].AccruedInterest.IsZero())
}

func TestAccountFreeze(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewBankAccount("steve", start)

	a.SetFrozen(true, "suspicious activity")
	assert.True(t, a.Frozen)
	assert.Equal(t, "suspicious activity", a.FrozenReason)

	a.SetFrozen(false, "")
	assert.False(t, a.Frozen)
	assert.Empty(t, a.FrozenReason)
}
