package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/config"
	ecoerrors "github.com/crystalrealm/ecobank/internal/errors"
	"github.com/crystalrealm/ecobank/internal/models"
	"github.com/crystalrealm/ecobank/internal/protection"
	"github.com/crystalrealm/ecobank/internal/storage"
)

// Result is the outcome of a banking operation. Rejections travel as reason
// codes, not Go errors; an error return means infrastructure failed, not
// that the request was denied.
type Result struct {
	OK      bool                 `json:"ok"`
	Code    ecoerrors.ReasonCode `json:"code"`
	Message string               `json:"message"`
	Amount  decimal.Decimal      `json:"amount"`
	EntryID string               `json:"entry_id,omitempty"`
}

func reject(code ecoerrors.ReasonCode) *Result {
	return &Result{OK: false, Code: code, Message: ecoerrors.Message(code)}
}

func accept(code ecoerrors.ReasonCode, amount decimal.Decimal, entryID string) *Result {
	return &Result{OK: true, Code: code, Message: ecoerrors.Message(code), Amount: amount, EntryID: entryID}
}

// BankService is the facade every adapter goes through. It owns the
// invariant ordering of an operation: frozen check, abuse check, wallet
// check, domain validation, wallet movement, then persistence and audit.
// Access is serialized per owner, so two operations on the same account
// never interleave while different owners proceed in parallel.
type BankService struct {
	store     storage.Storage
	wallet    Wallet
	notifier  Notifier
	guard     *protection.AbuseGuard
	deposits  *DepositService
	loans     *LoanService
	credit    *CreditService
	taxes     *TaxService
	inflation *InflationService
	metrics   *MetricsService
	cfg       config.ProtectionConfig
	clock     Clock
	logger    *slog.Logger

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewBankService(
	store storage.Storage,
	wallet Wallet,
	notifier Notifier,
	guard *protection.AbuseGuard,
	deposits *DepositService,
	loans *LoanService,
	credit *CreditService,
	taxes *TaxService,
	inflation *InflationService,
	metrics *MetricsService,
	cfg config.ProtectionConfig,
	clock Clock,
	logger *slog.Logger,
) *BankService {
	return &BankService{
		store:     store,
		wallet:    wallet,
		notifier:  notifier,
		guard:     guard,
		deposits:  deposits,
		loans:     loans,
		credit:    credit,
		taxes:     taxes,
		inflation: inflation,
		metrics:   metrics,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// ownerLock returns the mutex serializing the owner's operations.
func (s *BankService) ownerLock(owner string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[owner]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[owner] = lock
	}
	return lock
}

// Plans lists the configured deposit products.
func (s *BankService) Plans() []models.DepositPlan { return s.deposits.Plans() }

// InflationRate returns the current inflation rate.
func (s *BankService) InflationRate() decimal.Decimal { return s.inflation.CurrentRate() }

// Account returns the owner's account, creating it on first reference.
func (s *BankService) Account(owner string) (*models.BankAccount, error) {
	return s.store.LoadOrCreateAccount(owner)
}

// CreditScore returns the owner's credit score, creating it on first
// reference.
func (s *BankService) CreditScore(owner string) (*models.CreditScore, error) {
	return s.credit.Score(owner)
}

// QuoteLoanRate prices a loan for the owner's current credit standing.
func (s *BankService) QuoteLoanRate(owner string) (models.AnnualRate, error) {
	score, err := s.credit.Score(owner)
	if err != nil {
		return models.AnnualRate{}, err
	}
	return s.loans.EffectiveRate(score.Score), nil
}

// Accounts returns every persisted account. Admin reporting.
func (s *BankService) Accounts() ([]*models.BankAccount, error) {
	return s.store.Accounts()
}

// CreditScores returns every persisted credit score. Admin reporting.
func (s *BankService) CreditScores() ([]*models.CreditScore, error) {
	return s.store.CreditScores()
}

// AuditTrail returns the owner's newest audit entries.
func (s *BankService) AuditTrail(owner string, limit int) ([]models.AuditLog, error) {
	return s.store.AuditLogs(owner, limit)
}

// OpenDeposit places wallet money into a fixed-term deposit.
func (s *BankService) OpenDeposit(owner, planName string, amount decimal.Decimal) (*Result, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock.Now()
	account, err := s.store.LoadOrCreateAccount(owner)
	if err != nil {
		return nil, err
	}
	if account.Frozen {
		return s.done(owner, "deposit_open", reject(ecoerrors.AccountFrozen)), nil
	}
	if code := s.guard.Check(owner, protection.OpDeposit); code != "" {
		return s.done(owner, "deposit_open", reject(code)), nil
	}

	tax := s.taxes.TransactionTax(amount)
	total := amount.Add(tax)
	balance, err := s.wallet.Balance(owner)
	if err != nil {
		return nil, fmt.Errorf("wallet balance for %s: %w", owner, err)
	}
	if balance.LessThan(amount) {
		return s.done(owner, "deposit_open", reject(ecoerrors.InsufficientFunds)), nil
	}
	if balance.LessThan(total) {
		return s.done(owner, "deposit_open", reject(ecoerrors.InsufficientFundsWithTax)), nil
	}

	deposit, code, err := s.deposits.Open(account, planName, amount, now)
	if err != nil {
		return nil, err
	}
	if code != "" {
		return s.done(owner, "deposit_open", reject(code)), nil
	}

	ok, err := s.wallet.Withdraw(owner, total, "deposit "+deposit.ID)
	if err != nil {
		account.RemoveDeposit(deposit.ID)
		return nil, fmt.Errorf("wallet withdraw for %s: %w", owner, err)
	}
	if !ok {
		account.RemoveDeposit(deposit.ID)
		return s.done(owner, "deposit_open", reject(ecoerrors.InsufficientFunds)), nil
	}

	if err := s.store.SaveAccount(account); err != nil {
		return nil, err
	}
	s.guard.Record(owner, protection.OpDeposit)
	s.audit(owner, models.TxDepositOpen, amount,
		fmt.Sprintf("plan=%s deposit=%s tax=%s", planName, deposit.ID, tax), now)

	return s.done(owner, "deposit_open", accept(ecoerrors.DepositOpened, amount, deposit.ID)), nil
}

// CloseDeposit pays a deposit out to the wallet, with the early withdrawal
// penalty when the deposit has not matured.
func (s *BankService) CloseDeposit(owner, depositID string) (*Result, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock.Now()
	account, err := s.store.LoadAccount(owner)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return s.done(owner, "deposit_close", reject(ecoerrors.DepositNotFound)), nil
	}
	if err != nil {
		return nil, err
	}
	if account.Frozen {
		return s.done(owner, "deposit_close", reject(ecoerrors.AccountFrozen)), nil
	}
	if code := s.guard.Check(owner, ""); code != "" {
		return s.done(owner, "deposit_close", reject(code)), nil
	}

	outcome, code, err := s.deposits.Close(account, depositID, now)
	if err != nil {
		return nil, err
	}
	if code != "" {
		return s.done(owner, "deposit_close", reject(code)), nil
	}

	if outcome.Payout.IsPositive() {
		if err := s.wallet.Deposit(owner, outcome.Payout, "deposit payout "+depositID); err != nil {
			return nil, fmt.Errorf("wallet deposit for %s: %w", owner, err)
		}
	}

	if err := s.store.SaveAccount(account); err != nil {
		return nil, err
	}
	s.guard.Record(owner, "")

	txType := models.TxDepositClose
	if outcome.Early {
		txType = models.TxDepositEarlyWithdrawal
	}
	s.audit(owner, txType, outcome.Payout,
		fmt.Sprintf("deposit=%s interest=%s tax=%s penalty=%s",
			depositID, outcome.Interest, outcome.Tax, outcome.Penalty), now)

	return s.done(owner, "deposit_close", accept(ecoerrors.DepositClosed, outcome.Payout, depositID)), nil
}

// TakeLoan issues a loan: collateral moves from the wallet to the bank and
// the principal is disbursed to the wallet.
func (s *BankService) TakeLoan(owner string, amount decimal.Decimal) (*Result, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock.Now()
	account, err := s.store.LoadOrCreateAccount(owner)
	if err != nil {
		return nil, err
	}
	if account.Frozen {
		return s.done(owner, "loan_take", reject(ecoerrors.AccountFrozen)), nil
	}
	if code := s.guard.Check(owner, protection.OpLoan); code != "" {
		return s.done(owner, "loan_take", reject(code)), nil
	}

	collateral := s.loans.CollateralFor(amount)
	balance, err := s.wallet.Balance(owner)
	if err != nil {
		return nil, fmt.Errorf("wallet balance for %s: %w", owner, err)
	}
	if balance.LessThan(collateral) {
		return s.done(owner, "loan_take", reject(ecoerrors.InsufficientCollateral)), nil
	}

	loan, code, err := s.loans.Take(account, amount, now)
	if err != nil {
		return nil, err
	}
	if code != "" {
		return s.done(owner, "loan_take", reject(code)), nil
	}

	ok, err := s.wallet.Withdraw(owner, collateral, "loan collateral "+loan.ID)
	if err != nil {
		account.RemoveLoan(loan.ID)
		return nil, fmt.Errorf("wallet withdraw for %s: %w", owner, err)
	}
	if !ok {
		account.RemoveLoan(loan.ID)
		return s.done(owner, "loan_take", reject(ecoerrors.InsufficientCollateral)), nil
	}

	if err := s.wallet.Deposit(owner, amount, "loan disbursement "+loan.ID); err != nil {
		return nil, fmt.Errorf("wallet deposit for %s: %w", owner, err)
	}

	if err := s.store.SaveAccount(account); err != nil {
		return nil, err
	}
	s.guard.Record(owner, protection.OpLoan)
	s.audit(owner, models.TxLoanTake, amount,
		fmt.Sprintf("loan=%s rate=%s collateral=%s", loan.ID, loan.Rate, collateral), now)

	return s.done(owner, "loan_take", accept(ecoerrors.LoanIssued, amount, loan.ID)), nil
}

// RepayLoan pays wallet money toward an open loan. Overpayment is capped at
// the remaining balance; full repayment returns the collateral.
func (s *BankService) RepayLoan(owner, loanID string, amount decimal.Decimal) (*Result, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock.Now()
	account, err := s.store.LoadAccount(owner)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return s.done(owner, "loan_repay", reject(ecoerrors.LoanNotFound)), nil
	}
	if err != nil {
		return nil, err
	}
	if account.Frozen {
		return s.done(owner, "loan_repay", reject(ecoerrors.AccountFrozen)), nil
	}
	if code := s.guard.Check(owner, ""); code != "" {
		return s.done(owner, "loan_repay", reject(code)), nil
	}

	loan := account.LoanByID(loanID)
	if loan == nil || !loan.IsOpen() {
		return s.done(owner, "loan_repay", reject(ecoerrors.LoanNotFound)), nil
	}

	pay := amount
	if pay.GreaterThan(loan.RemainingBalance) {
		pay = loan.RemainingBalance
	}

	balance, err := s.wallet.Balance(owner)
	if err != nil {
		return nil, fmt.Errorf("wallet balance for %s: %w", owner, err)
	}
	if balance.LessThan(pay) {
		return s.done(owner, "loan_repay", reject(ecoerrors.InsufficientFunds)), nil
	}

	ok, err := s.wallet.Withdraw(owner, pay, "loan repayment "+loanID)
	if err != nil {
		return nil, fmt.Errorf("wallet withdraw for %s: %w", owner, err)
	}
	if !ok {
		return s.done(owner, "loan_repay", reject(ecoerrors.InsufficientFunds)), nil
	}

	outcome, code, err := s.loans.Repay(account, loanID, pay, now)
	if err != nil {
		return nil, err
	}
	if code != "" {
		// The lookup above makes this unreachable; refund defensively anyway.
		if derr := s.wallet.Deposit(owner, pay, "loan repayment refund "+loanID); derr != nil {
			return nil, derr
		}
		return s.done(owner, "loan_repay", reject(code)), nil
	}

	if outcome.FullyPaid && outcome.CollateralReturned.IsPositive() {
		if err := s.wallet.Deposit(owner, outcome.CollateralReturned, "collateral return "+loanID); err != nil {
			return nil, fmt.Errorf("wallet deposit for %s: %w", owner, err)
		}
	}

	if err := s.store.SaveAccount(account); err != nil {
		return nil, err
	}
	s.guard.Record(owner, "")
	s.audit(owner, models.TxLoanRepay, outcome.Applied,
		fmt.Sprintf("loan=%s fully_paid=%t", loanID, outcome.FullyPaid), now)

	code = ecoerrors.LoanPartiallyRepaid
	if outcome.FullyPaid {
		code = ecoerrors.LoanFullyRepaid
		s.notifier.Notify(Notification{
			OwnerID: owner,
			Title:   "Loan repaid",
			Body:    fmt.Sprintf("Loan %s fully repaid. Collateral %s returned.", loanID, outcome.CollateralReturned),
		})
	}
	return s.done(owner, "loan_repay", accept(code, outcome.Applied, loanID)), nil
}

// Freeze blocks all operations on the owner's account.
func (s *BankService) Freeze(owner, reason string) (*Result, error) {
	return s.setFrozen(owner, true, reason)
}

// Unfreeze lifts a freeze.
func (s *BankService) Unfreeze(owner string) (*Result, error) {
	return s.setFrozen(owner, false, "")
}

func (s *BankService) setFrozen(owner string, frozen bool, reason string) (*Result, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock.Now()
	account, err := s.store.LoadOrCreateAccount(owner)
	if err != nil {
		return nil, err
	}
	account.SetFrozen(frozen, reason)
	if err := s.store.SaveAccount(account); err != nil {
		return nil, err
	}

	txType, code := models.TxUnfreeze, ecoerrors.AccountUnfrozenOK
	if frozen {
		txType, code = models.TxFreeze, ecoerrors.AccountFrozenOK
	}
	s.audit(owner, txType, decimal.Zero, reason, now)
	s.logger.Info("account freeze state changed", "owner", owner, "frozen", frozen, "reason", reason)
	return accept(code, decimal.Zero, ""), nil
}

// audit appends an entry unless audit logging is disabled. Audit failures
// are logged and swallowed so they never fail the operation they describe.
func (s *BankService) audit(owner, txType string, amount decimal.Decimal, detail string, now time.Time) {
	if !s.cfg.AuditLogEnabled {
		return
	}
	entry := &models.AuditLog{
		ID:        newEntryID(),
		OwnerID:   owner,
		TxType:    txType,
		Amount:    amount,
		Detail:    detail,
		CreatedAt: now,
	}
	if err := s.store.AppendAudit(entry); err != nil {
		s.logger.Error("audit append failed", "owner", owner, "tx_type", txType, "error", err)
	}
}

// done records metrics for an operation result and passes it through.
func (s *BankService) done(owner, op string, r *Result) *Result {
	if s.metrics != nil {
		s.metrics.RecordOperation(op, r.OK, string(r.Code))
	}
	if !r.OK {
		s.logger.Debug("operation rejected", "owner", owner, "op", op, "code", r.Code)
	}
	return r
}
