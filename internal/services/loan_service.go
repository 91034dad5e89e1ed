package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/config"
	ecoerrors "github.com/crystalrealm/ecobank/internal/errors"
	"github.com/crystalrealm/ecobank/internal/gametime"
	"github.com/crystalrealm/ecobank/internal/models"
)

// minLoanRate floors the effective rate so excellent credit plus deflation
// can never produce a free or negative-interest loan.
var minLoanRate = decimal.NewFromFloat(0.01)

// LoanService owns loan issue, repayment, and the daily collection cycle.
// Pricing combines the configured base rate, the borrower's credit standing,
// and the current inflation surcharge.
type LoanService struct {
	cfg       config.LoansConfig
	credit    *CreditService
	inflation *InflationService
	cal       gametime.Calendar
	logger    *slog.Logger
}

func NewLoanService(cfg config.LoansConfig, credit *CreditService, inflation *InflationService, cal gametime.Calendar, logger *slog.Logger) *LoanService {
	return &LoanService{
		cfg:       cfg,
		credit:    credit,
		inflation: inflation,
		cal:       cal,
		logger:    logger,
	}
}

// EffectiveRate prices a loan for the given credit score.
func (s *LoanService) EffectiveRate(score int) models.AnnualRate {
	base := decimal.NewFromFloat(s.cfg.BaseInterestRate).
		Add(s.credit.RateModifier(score))
	rate := s.inflation.AdjustLoanRate(base)
	if rate.LessThan(minLoanRate) {
		rate = minLoanRate
	}
	return models.NewAnnualRate(rate)
}

// CollateralFor returns the collateral required to take a loan of amount.
func (s *LoanService) CollateralFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(s.cfg.CollateralRate)).Round(2)
}

// Take validates and issues a loan on the account. A non-empty reason code
// means rejection without touching the account. Collateral is priced here
// but collected by the caller.
func (s *LoanService) Take(account *models.BankAccount, amount decimal.Decimal, now time.Time) (*models.Loan, ecoerrors.ReasonCode, error) {
	if !s.cfg.Enabled {
		return nil, ecoerrors.LoansDisabled, nil
	}

	score, err := s.credit.Score(account.OwnerID)
	if err != nil {
		return nil, "", err
	}
	if score.Score < s.cfg.MinCreditScoreForLoan {
		return nil, ecoerrors.CreditTooLow, nil
	}
	if len(account.ActiveLoans()) >= s.cfg.MaxActiveLoans {
		return nil, ecoerrors.TooManyLoans, nil
	}
	if amount.LessThan(decimal.NewFromFloat(s.cfg.MinAmount)) {
		return nil, ecoerrors.AmountTooLow, nil
	}
	maxAmount := s.credit.MaxLoanAmount(score.Score, decimal.NewFromFloat(s.cfg.MaxAmount))
	if amount.GreaterThan(maxAmount) {
		return nil, ecoerrors.AmountTooHigh, nil
	}

	loan := models.NewLoan(
		newEntryID(), account.OwnerID,
		amount, s.EffectiveRate(score.Score), s.cfg.DefaultTermDays,
		s.CollateralFor(amount), now, s.cal,
	)
	if err := account.AddLoan(loan); err != nil {
		return nil, "", err
	}

	s.logger.Info("loan issued",
		"owner", account.OwnerID, "loan", loan.ID,
		"amount", amount, "rate", loan.Rate, "collateral", loan.Collateral)
	return account.LoanByID(loan.ID), "", nil
}

// RepayOutcome describes a repayment.
type RepayOutcome struct {
	Loan               *models.Loan
	Applied            decimal.Decimal
	FullyPaid          bool
	CollateralReturned decimal.Decimal
	CreditBonus        bool
}

// Repay pays down an open loan. On full repayment the collateral is owed
// back to the borrower, and a credit bonus is earned when the loan was held
// long enough to rule out wash borrowing.
func (s *LoanService) Repay(account *models.BankAccount, loanID string, amount decimal.Decimal, now time.Time) (*RepayOutcome, ecoerrors.ReasonCode, error) {
	loan := account.LoanByID(loanID)
	if loan == nil || !loan.IsOpen() {
		return nil, ecoerrors.LoanNotFound, nil
	}

	applied, paid, err := loan.ApplyPayment(amount, now)
	if err != nil {
		return nil, "", fmt.Errorf("failed to apply payment: %w", err)
	}
	account.Touch(now)

	outcome := &RepayOutcome{Loan: loan, Applied: applied, FullyPaid: paid}
	if paid {
		outcome.CollateralReturned = loan.Collateral
		if loan.ElapsedDays(now, s.cal) >= s.cfg.MinLoanDaysForCreditBonus {
			outcome.CreditBonus = true
			if err := s.credit.RecordLoanCompleted(account.OwnerID); err != nil {
				return nil, "", err
			}
		}
	} else {
		loan.RecalculateDailyPayment(now, s.cal)
		if loan.Status == models.LoanStatusActive &&
			loan.ElapsedDays(now, s.cal) >= s.cfg.MinLoanDaysForCreditBonus {
			if err := s.credit.RecordOnTimePayment(account.OwnerID); err != nil {
				return nil, "", err
			}
		}
	}

	s.logger.Info("loan repayment",
		"owner", account.OwnerID, "loan", loan.ID,
		"applied", applied, "fully_paid", paid)
	return outcome, "", nil
}

// Daily loan event kinds.
const (
	LoanEventCollected = "collected"
	LoanEventMissed    = "missed"
	LoanEventCompleted = "completed"
	LoanEventOverdue   = "overdue"
	LoanEventDefaulted = "defaulted"
)

// LoanEvent is one thing that happened to a loan during daily processing.
type LoanEvent struct {
	Loan   *models.Loan
	Kind   string
	Amount decimal.Decimal
}

// ProcessDaily runs one day of the collection cycle over the account's open
// loans: compound interest, attempt the scheduled payment from the wallet,
// then apply overdue and default transitions.
func (s *LoanService) ProcessDaily(account *models.BankAccount, wallet Wallet, now time.Time) ([]LoanEvent, error) {
	var events []LoanEvent

	for _, loan := range account.ActiveLoans() {
		loan.AccrueInterest()
		loan.RecalculateDailyPayment(now, s.cal)

		due := loan.DailyPayment
		if due.GreaterThan(loan.RemainingBalance) {
			due = loan.RemainingBalance
		}

		collected := false
		if due.IsPositive() {
			ok, err := wallet.Withdraw(account.OwnerID, due, "loan daily payment "+loan.ID)
			if err != nil {
				return events, fmt.Errorf("wallet withdraw for %s: %w", account.OwnerID, err)
			}
			collected = ok
		}

		if collected {
			_, paid, err := loan.ApplyPayment(due, now)
			if err != nil {
				return events, err
			}
			if loan.Status == models.LoanStatusActive &&
				loan.ElapsedDays(now, s.cal) >= s.cfg.MinLoanDaysForCreditBonus {
				if err := s.credit.RecordOnTimePayment(account.OwnerID); err != nil {
					return events, err
				}
			}
			events = append(events, LoanEvent{Loan: loan, Kind: LoanEventCollected, Amount: due})

			if paid {
				// Automatic final payment still returns the collateral.
				if err := wallet.Deposit(account.OwnerID, loan.Collateral, "collateral return "+loan.ID); err != nil {
					return events, err
				}
				if loan.ElapsedDays(now, s.cal) >= s.cfg.MinLoanDaysForCreditBonus {
					if err := s.credit.RecordLoanCompleted(account.OwnerID); err != nil {
						return events, err
					}
				}
				events = append(events, LoanEvent{Loan: loan, Kind: LoanEventCompleted, Amount: loan.TotalPaid})
				continue
			}
		} else {
			// A missed collection counts against the schedule but the
			// credit penalty waits for the overdue transition.
			loan.MissedPayments++
			events = append(events, LoanEvent{Loan: loan, Kind: LoanEventMissed, Amount: due})
		}

		wentOverdue := false
		if loan.IsPastDue(now) {
			if err := loan.MarkOverdue(); err != nil {
				return events, err
			}
			if err := s.credit.RecordLatePayment(account.OwnerID); err != nil {
				return events, err
			}
			wentOverdue = true
		}

		if loan.Status == models.LoanStatusOverdue {
			// The penalty compounds every day the loan stays overdue.
			penalty := loan.RemainingBalance.
				Mul(decimal.NewFromFloat(s.cfg.OverduePenaltyRate)).
				Round(2)
			loan.RemainingBalance = loan.RemainingBalance.Add(penalty)
			if wentOverdue {
				events = append(events, LoanEvent{Loan: loan, Kind: LoanEventOverdue, Amount: penalty})
			}

			if s.cal.DaysSince(loan.DueDate, now) > s.cfg.DefaultAfterDays {
				if err := loan.MarkDefaulted(); err != nil {
					return events, err
				}
				if err := s.credit.RecordLoanDefaulted(account.OwnerID); err != nil {
					return events, err
				}
				// Collateral is forfeited to the bank sink, not returned.
				events = append(events, LoanEvent{Loan: loan, Kind: LoanEventDefaulted, Amount: loan.Collateral})
				s.logger.Warn("loan defaulted",
					"owner", account.OwnerID, "loan", loan.ID,
					"balance", loan.RemainingBalance, "collateral", loan.Collateral)
			}
		}
	}

	if len(events) > 0 {
		account.Touch(now)
	}
	return events, nil
}
