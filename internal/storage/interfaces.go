package storage

import (
	"errors"

	"github.com/crystalrealm/ecobank/internal/models"
)

var (
	// ErrAccountNotFound is returned by LoadAccount when the owner has no
	// persisted account. LoadOrCreateAccount never returns it.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCorruptRecord is returned when a persisted record fails model
	// validation on load. Corrupt data is surfaced, never silently replaced.
	ErrCorruptRecord = errors.New("corrupt stored record")
)

// Storage is the persistence port for the banking core. Implementations must
// be safe for concurrent use; the facade may call them from operation
// goroutines and from the scheduler at the same time.
type Storage interface {
	// LoadOrCreateAccount returns the owner's account, creating and
	// persisting a fresh one on first reference.
	LoadOrCreateAccount(owner string) (*models.BankAccount, error)

	// LoadAccount returns the owner's account or ErrAccountNotFound.
	LoadAccount(owner string) (*models.BankAccount, error)

	// SaveAccount persists the account and all owned deposits and loans.
	SaveAccount(account *models.BankAccount) error

	// LoadOrCreateCreditScore returns the owner's credit score, creating
	// one at the configured initial score on first reference.
	LoadOrCreateCreditScore(owner string) (*models.CreditScore, error)

	// SaveCreditScore persists the credit score.
	SaveCreditScore(score *models.CreditScore) error

	// AppendAudit appends an immutable audit entry, evicting the owner's
	// oldest entries beyond the configured cap.
	AppendAudit(entry *models.AuditLog) error

	// AuditLogs returns the owner's newest entries, newest first,
	// at most limit (or all when limit <= 0).
	AuditLogs(owner string, limit int) ([]models.AuditLog, error)

	// Accounts returns every persisted account.
	Accounts() ([]*models.BankAccount, error)

	// CreditScores returns every persisted credit score.
	CreditScores() ([]*models.CreditScore, error)

	// LoadAll warms the cache with every stored account and credit score.
	LoadAll() error

	// SaveAll flushes every cached account and credit score.
	SaveAll() error

	// Close flushes and releases the underlying database.
	Close() error
}
