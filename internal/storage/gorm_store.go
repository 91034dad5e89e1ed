package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crystalrealm/ecobank/internal/models"
)

// Options tunes a GormStore.
type Options struct {
	// InitialCreditScore seeds scores created on first reference.
	InitialCreditScore int
	// MaxAuditEntries caps the per-owner audit history. <= 0 disables the cap.
	MaxAuditEntries int
	// NowFn overrides the clock. Nil means time.Now.
	NowFn func() time.Time
}

// GormStore is a write-through store: every account and credit score lives in
// an in-memory cache once loaded, and each Save writes both the cache and the
// database. SaveAll re-flushes the whole cache, which makes autosave cheap to
// reason about even if an individual Save was missed.
type GormStore struct {
	db     *gorm.DB
	logger *slog.Logger
	opts   Options

	mu       sync.RWMutex
	accounts map[string]*models.BankAccount
	scores   map[string]*models.CreditScore
}

// Open opens (or creates) the sqlite database at path and migrates the schema.
func Open(path string, log *slog.Logger, opts Options) (*GormStore, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	return NewGormStore(db, log, opts)
}

// NewGormStore wraps an existing gorm connection and migrates the schema.
func NewGormStore(db *gorm.DB, log *slog.Logger, opts Options) (*GormStore, error) {
	if err := db.AutoMigrate(
		&models.BankAccount{},
		&models.Deposit{},
		&models.Loan{},
		&models.CreditScore{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if opts.InitialCreditScore == 0 {
		opts.InitialCreditScore = models.InitialCreditScore
	}
	if opts.NowFn == nil {
		opts.NowFn = time.Now
	}
	if log == nil {
		log = slog.Default()
	}

	return &GormStore{
		db:       db,
		logger:   log,
		opts:     opts,
		accounts: make(map[string]*models.BankAccount),
		scores:   make(map[string]*models.CreditScore),
	}, nil
}

func (s *GormStore) LoadOrCreateAccount(owner string) (*models.BankAccount, error) {
	account, err := s.LoadAccount(owner)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	account = models.NewBankAccount(owner, s.opts.NowFn())
	if err := s.SaveAccount(account); err != nil {
		return nil, err
	}
	s.logger.Info("created bank account", "owner", owner)
	return account, nil
}

func (s *GormStore) LoadAccount(owner string) (*models.BankAccount, error) {
	s.mu.RLock()
	if account, ok := s.accounts[owner]; ok {
		s.mu.RUnlock()
		return account, nil
	}
	s.mu.RUnlock()

	var account models.BankAccount
	err := s.db.Preload("Deposits").Preload("Loans").
		First(&account, "owner_id = ?", owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", owner, err)
	}

	if err := validateAccount(&account); err != nil {
		return nil, fmt.Errorf("account %s: %w: %w", owner, ErrCorruptRecord, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.accounts[owner]; ok {
		return cached, nil
	}
	s.accounts[owner] = &account
	return &account, nil
}

func (s *GormStore) SaveAccount(account *models.BankAccount) error {
	s.mu.Lock()
	s.accounts[account.OwnerID] = account
	s.mu.Unlock()

	if err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).
		Save(account).Error; err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.OwnerID, err)
	}
	return nil
}

func (s *GormStore) LoadOrCreateCreditScore(owner string) (*models.CreditScore, error) {
	s.mu.RLock()
	if score, ok := s.scores[owner]; ok {
		s.mu.RUnlock()
		return score, nil
	}
	s.mu.RUnlock()

	var score models.CreditScore
	err := s.db.First(&score, "owner_id = ?", owner).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := models.NewCreditScore(owner, s.opts.InitialCreditScore, s.opts.NowFn())
		if err := s.SaveCreditScore(created); err != nil {
			return nil, err
		}
		return created, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load credit score %s: %w", owner, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.scores[owner]; ok {
		return cached, nil
	}
	s.scores[owner] = &score
	return &score, nil
}

func (s *GormStore) SaveCreditScore(score *models.CreditScore) error {
	s.mu.Lock()
	s.scores[score.OwnerID] = score
	s.mu.Unlock()

	if err := s.db.Save(score).Error; err != nil {
		return fmt.Errorf("failed to save credit score %s: %w", score.OwnerID, err)
	}
	return nil
}

func (s *GormStore) AppendAudit(entry *models.AuditLog) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	if s.opts.MaxAuditEntries > 0 {
		if err := s.evictOldAudit(entry.OwnerID); err != nil {
			// Eviction failure must not fail the operation that logged.
			s.logger.Warn("audit eviction failed", "owner", entry.OwnerID, "error", err)
		}
	}
	return nil
}

func (s *GormStore) evictOldAudit(owner string) error {
	var count int64
	if err := s.db.Model(&models.AuditLog{}).
		Where("owner_id = ?", owner).Count(&count).Error; err != nil {
		return err
	}

	excess := count - int64(s.opts.MaxAuditEntries)
	if excess <= 0 {
		return nil
	}

	var seqs []uint
	if err := s.db.Model(&models.AuditLog{}).
		Where("owner_id = ?", owner).
		Order("seq ASC").Limit(int(excess)).
		Pluck("seq", &seqs).Error; err != nil {
		return err
	}

	return s.db.Delete(&models.AuditLog{}, "seq IN ?", seqs).Error
}

func (s *GormStore) AuditLogs(owner string, limit int) ([]models.AuditLog, error) {
	query := s.db.Where("owner_id = ?", owner).Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit logs for %s: %w", owner, err)
	}
	return entries, nil
}

func (s *GormStore) Accounts() ([]*models.BankAccount, error) {
	var owners []string
	if err := s.db.Model(&models.BankAccount{}).
		Order("owner_id ASC").Pluck("owner_id", &owners).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	// Go through LoadAccount so every caller shares the cached instance.
	accounts := make([]*models.BankAccount, 0, len(owners))
	for _, owner := range owners {
		account, err := s.LoadAccount(owner)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *GormStore) CreditScores() ([]*models.CreditScore, error) {
	var owners []string
	if err := s.db.Model(&models.CreditScore{}).
		Order("owner_id ASC").Pluck("owner_id", &owners).Error; err != nil {
		return nil, fmt.Errorf("failed to list credit scores: %w", err)
	}

	scores := make([]*models.CreditScore, 0, len(owners))
	for _, owner := range owners {
		score, err := s.LoadOrCreateCreditScore(owner)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// LoadAll pulls every stored account and credit score into the cache, so
// startup pays the load cost once instead of on first use per owner.
func (s *GormStore) LoadAll() error {
	accounts, err := s.Accounts()
	if err != nil {
		return err
	}
	scores, err := s.CreditScores()
	if err != nil {
		return err
	}
	s.logger.Info("loaded ledger", "accounts", len(accounts), "credit_scores", len(scores))
	return nil
}

func (s *GormStore) SaveAll() error {
	s.mu.RLock()
	accounts := make([]*models.BankAccount, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	scores := make([]*models.CreditScore, 0, len(s.scores))
	for _, score := range s.scores {
		scores = append(scores, score)
	}
	s.mu.RUnlock()

	var firstErr error
	for _, account := range accounts {
		if err := s.SaveAccount(account); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, score := range scores {
		if err := s.SaveCreditScore(score); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Ping checks database connectivity.
func (s *GormStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *GormStore) Close() error {
	if err := s.SaveAll(); err != nil {
		s.logger.Error("final save failed", "error", err)
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func validateAccount(account *models.BankAccount) error {
	for i := range account.Deposits {
		if err := account.Deposits[i].Validate(); err != nil {
			return fmt.Errorf("deposit %s: %w", account.Deposits[i].ID, err)
		}
	}
	for i := range account.Loans {
		if err := account.Loans[i].Validate(); err != nil {
			return fmt.Errorf("loan %s: %w", account.Loans[i].ID, err)
		}
	}
	return nil
}
