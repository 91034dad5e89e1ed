package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystalrealm/ecobank/internal/gametime"
	"github.com/crystalrealm/ecobank/internal/models"
)

var cal = gametime.NewCalendar(gametime.DefaultSecondsPerDay)

func TestLoadOrCreateAccount(t *testing.T) {
	store := SetupTestStore(t, Options{})

	account, err := store.LoadOrCreateAccount("steve")
	require.NoError(t, err)
	assert.Equal(t, "steve", account.OwnerID)
	assert.False(t, account.Frozen)

	// A second call returns the same cached instance.
	again, err := store.LoadOrCreateAccount("steve")
	require.NoError(t, err)
	assert.Same(t, account, again)
}

func TestLoadAccountNotFound(t *testing.T) {
	store := SetupTestStore(t, Options{})

	_, err := store.LoadAccount("nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountRoundTrip(t *testing.T) {
	store := SetupTestStore(t, Options{})
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	account, err := store.LoadOrCreateAccount("steve")
	require.NoError(t, err)

	d := models.NewDeposit("dep00001", "steve", "short",
		decimal.NewFromInt(1000), models.TermYieldFromFloat(0.03), 7, start, cal)
	require.NoError(t, account.AddDeposit(d))

	l := models.NewLoan("loan0001", "steve",
		decimal.NewFromInt(3000), models.AnnualRateFromFloat(0.10), 30,
		decimal.NewFromInt(600), start, cal)
	require.NoError(t, account.AddLoan(l))

	require.NoError(t, store.SaveAccount(account))

	// Reopen against the same database to force a cold load.
	cold, err := NewGormStore(store.db, store.logger, store.opts)
	require.NoError(t, err)

	loaded, err := cold.LoadAccount("steve")
	require.NoError(t, err)
	require.Len(t, loaded.Deposits, 1)
	require.Len(t, loaded.Loans, 1)

	gotDep := loaded.Deposits[0]
	assert.True(t, gotDep.Amount.Equal(d.Amount))
	assert.True(t, gotDep.Rate.Equal(d.Rate))
	assert.Equal(t, d.MaturityDate.UTC(), gotDep.MaturityDate.UTC())

	gotLoan := loaded.Loans[0]
	assert.True(t, gotLoan.RemainingBalance.Equal(l.RemainingBalance))
	assert.True(t, gotLoan.DailyPayment.Equal(l.DailyPayment))
	assert.Equal(t, models.LoanStatusActive, gotLoan.Status)
}

func TestLoadAccountRejectsCorruptRecord(t *testing.T) {
	store := SetupTestStore(t, Options{})
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	account, err := store.LoadOrCreateAccount("steve")
	require.NoError(t, err)
	d := models.NewDeposit("dep00001", "steve", "short",
		decimal.NewFromInt(1000), models.TermYieldFromFloat(0.03), 7, start, cal)
	require.NoError(t, account.AddDeposit(d))
	require.NoError(t, store.SaveAccount(account))

	require.NoError(t, store.db.Model(&models.Deposit{}).
		Where("id = ?", "dep00001").Update("status", "GARBAGE").Error)

	cold, err := NewGormStore(store.db, store.logger, store.opts)
	require.NoError(t, err)

	_, err = cold.LoadAccount("steve")
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestLoadOrCreateCreditScore(t *testing.T) {
	store := SetupTestStore(t, Options{InitialCreditScore: 500})

	score, err := store.LoadOrCreateCreditScore("steve")
	require.NoError(t, err)
	assert.Equal(t, 500, score.Score)

	score.Adjust(50, time.Now())
	require.NoError(t, store.SaveCreditScore(score))

	again, err := store.LoadOrCreateCreditScore("steve")
	require.NoError(t, err)
	assert.Same(t, score, again)
	assert.Equal(t, 550, again.Score)
}

func TestAppendAuditEvictsOldest(t *testing.T) {
	store := SetupTestStore(t, Options{MaxAuditEntries: 5})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 8; i++ {
		entry := &models.AuditLog{
			ID:        fmt.Sprintf("audit%03d", i),
			OwnerID:   "steve",
			TxType:    models.TxDepositOpen,
			Amount:    decimal.NewFromInt(int64(i)),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.AppendAudit(entry))
	}

	entries, err := store.AuditLogs("steve", 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Newest first, and the three oldest entries are gone.
	assert.Equal(t, "audit007", entries[0].ID)
	assert.Equal(t, "audit003", entries[4].ID)
}

func TestAuditLogsLimit(t *testing.T) {
	store := SetupTestStore(t, Options{})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.AppendAudit(&models.AuditLog{
			ID:        fmt.Sprintf("audit%03d", i),
			OwnerID:   "steve",
			TxType:    models.TxLoanTake,
			Amount:    decimal.Zero,
			CreatedAt: now,
		}))
	}

	entries, err := store.AuditLogs("steve", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "audit003", entries[0].ID)

	// Other owners see nothing.
	none, err := store.AuditLogs("alex", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAccountsAndSaveAll(t *testing.T) {
	store := SetupTestStore(t, Options{})

	for _, owner := range []string{"steve", "alex", "herobrine"} {
		_, err := store.LoadOrCreateAccount(owner)
		require.NoError(t, err)
	}

	accounts, err := store.Accounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 3)

	// Mutate in memory only, then flush everything.
	accounts[0].SetFrozen(true, "test")
	require.NoError(t, store.SaveAll())

	cold, err := NewGormStore(store.db, store.logger, store.opts)
	require.NoError(t, err)
	loaded, err := cold.LoadAccount(accounts[0].OwnerID)
	require.NoError(t, err)
	assert.True(t, loaded.Frozen)
}
