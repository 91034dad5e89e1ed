package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/models"
)

// RunDailyBatch executes one game day for every account: deposit accrual and
// maturation, loan collection and state transitions, then the balance tax.
// A failure on one account is logged and skipped so the rest of the batch
// still runs.
func (s *BankService) RunDailyBatch() error {
	started := time.Now()
	now := s.clock.Now()

	accounts, err := s.store.Accounts()
	if err != nil {
		return fmt.Errorf("failed to list accounts for daily batch: %w", err)
	}

	processed := 0
	for _, account := range accounts {
		if err := s.processAccountDay(account, now); err != nil {
			s.logger.Error("daily processing failed for account",
				"owner", account.OwnerID, "error", err)
			continue
		}
		processed++
	}

	if s.metrics != nil {
		s.metrics.ObserveDailyBatch(time.Since(started), processed)
	}
	s.logger.Info("daily batch complete",
		"accounts", len(accounts), "processed", processed,
		"elapsed", time.Since(started))
	return nil
}

func (s *BankService) processAccountDay(account *models.BankAccount, now time.Time) error {
	lock := s.ownerLock(account.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	owner := account.OwnerID

	for _, d := range s.deposits.ProcessDaily(account, now) {
		s.notifier.Notify(Notification{
			OwnerID: owner,
			Title:   "Deposit matured",
			Body:    fmt.Sprintf("Deposit %s matured. Claim %s at the bank.", d.ID, d.TotalPayout()),
		})
	}

	events, err := s.loans.ProcessDaily(account, s.wallet, now)
	if err != nil {
		return err
	}
	for _, ev := range events {
		s.recordLoanEvent(owner, ev, now)
	}

	if tax := s.taxes.BalanceTax(account.TotalDeposited()); tax.IsPositive() {
		// Best effort: an empty wallet defers the tax to a later day.
		ok, err := s.wallet.Withdraw(owner, tax, "balance tax")
		if err != nil {
			return err
		}
		if ok {
			s.audit(owner, models.TxBalanceTax, tax, "daily balance tax", now)
		}
	}

	return s.store.SaveAccount(account)
}

func (s *BankService) recordLoanEvent(owner string, ev LoanEvent, now time.Time) {
	switch ev.Kind {
	case LoanEventCollected:
		s.audit(owner, models.TxLoanDailyPayment, ev.Amount,
			fmt.Sprintf("loan=%s", ev.Loan.ID), now)
	case LoanEventMissed:
		s.audit(owner, models.TxLoanDailyPayment, decimal.Zero,
			fmt.Sprintf("loan=%s missed=%s", ev.Loan.ID, ev.Amount), now)
		s.notifier.Notify(Notification{
			OwnerID: owner,
			Title:   "Payment missed",
			Body:    fmt.Sprintf("Could not collect %s for loan %s.", ev.Amount, ev.Loan.ID),
		})
	case LoanEventCompleted:
		s.audit(owner, models.TxLoanRepay, ev.Amount,
			fmt.Sprintf("loan=%s auto-completed", ev.Loan.ID), now)
		s.notifier.Notify(Notification{
			OwnerID: owner,
			Title:   "Loan repaid",
			Body:    fmt.Sprintf("Loan %s fully repaid. Collateral returned.", ev.Loan.ID),
		})
	case LoanEventOverdue:
		s.audit(owner, models.TxLoanOverdue, ev.Amount,
			fmt.Sprintf("loan=%s", ev.Loan.ID), now)
		s.notifier.Notify(Notification{
			OwnerID: owner,
			Title:   "Loan overdue",
			Body:    fmt.Sprintf("Loan %s is overdue. A penalty of %s was added.", ev.Loan.ID, ev.Amount),
		})
	case LoanEventDefaulted:
		s.audit(owner, models.TxLoanDefault, ev.Amount,
			fmt.Sprintf("loan=%s collateral forfeited", ev.Loan.ID), now)
		s.notifier.Notify(Notification{
			OwnerID: owner,
			Title:   "Loan defaulted",
			Body:    fmt.Sprintf("Loan %s defaulted. Collateral of %s was forfeited.", ev.Loan.ID, ev.Amount),
		})
	}
}

// UpdateInflation performs one scheduled inflation drift step.
func (s *BankService) UpdateInflation() decimal.Decimal {
	rate := s.inflation.Update()
	if s.metrics != nil {
		s.metrics.SetInflationRate(rate.InexactFloat64())
	}
	return rate
}

// SaveAll flushes every cached account and credit score.
func (s *BankService) SaveAll() error {
	return s.store.SaveAll()
}
