package services

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/config"
	"github.com/crystalrealm/ecobank/internal/models"
	"github.com/crystalrealm/ecobank/internal/storage"
)

// CreditService maintains per-owner credit scores and translates them into
// loan terms. Scores move on discrete events (payments, completions,
// defaults) and never decay on their own.
type CreditService struct {
	store  storage.Storage
	cfg    config.CreditConfig
	clock  Clock
	logger *slog.Logger
}

func NewCreditService(store storage.Storage, cfg config.CreditConfig, clock Clock, logger *slog.Logger) *CreditService {
	return &CreditService{store: store, cfg: cfg, clock: clock, logger: logger}
}

// Score returns the owner's credit score, creating it on first reference.
func (s *CreditService) Score(owner string) (*models.CreditScore, error) {
	return s.store.LoadOrCreateCreditScore(owner)
}

// RateModifier returns the additive adjustment a score earns on the base
// loan rate. Negative for good credit, positive for bad.
func (s *CreditService) RateModifier(score int) decimal.Decimal {
	discount := decimal.NewFromFloat(s.cfg.ExcellentRateDiscount)
	penalty := decimal.NewFromFloat(s.cfg.PoorRatePenalty)
	two := decimal.NewFromInt(2)

	switch {
	case score >= 800:
		return discount.Neg()
	case score >= 600:
		return discount.Div(two).Neg()
	case score >= 400:
		return decimal.Zero
	case score >= 200:
		return penalty.Div(two)
	default:
		return penalty
	}
}

// LoanLimitMultiplier scales the configured maximum loan amount by credit
// standing.
func (s *CreditService) LoanLimitMultiplier(score int) decimal.Decimal {
	switch {
	case score >= 800:
		return decimal.NewFromFloat(2.0)
	case score >= 600:
		return decimal.NewFromFloat(1.5)
	case score >= 400:
		return decimal.NewFromFloat(1.0)
	case score >= 200:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.NewFromFloat(0.25)
	}
}

// MaxLoanAmount returns the owner's effective loan ceiling.
func (s *CreditService) MaxLoanAmount(score int, configuredMax decimal.Decimal) decimal.Decimal {
	return configuredMax.Mul(s.LoanLimitMultiplier(score)).Round(2)
}

// RecordLoanCompleted rewards paying a loan off.
func (s *CreditService) RecordLoanCompleted(owner string) error {
	return s.adjust(owner, s.cfg.LoanCompletedBonus, func(c *models.CreditScore) {
		c.LoansCompleted++
	})
}

// RecordLoanDefaulted punishes a default.
func (s *CreditService) RecordLoanDefaulted(owner string) error {
	return s.adjust(owner, s.cfg.LoanDefaultPenalty, func(c *models.CreditScore) {
		c.LoansDefaulted++
	})
}

// RecordOnTimePayment rewards a collected daily payment.
func (s *CreditService) RecordOnTimePayment(owner string) error {
	return s.adjust(owner, s.cfg.OnTimePaymentBonus, func(c *models.CreditScore) {
		c.OnTimePayments++
	})
}

// RecordLatePayment punishes a missed daily payment.
func (s *CreditService) RecordLatePayment(owner string) error {
	return s.adjust(owner, s.cfg.LatePaymentPenalty, func(c *models.CreditScore) {
		c.LatePayments++
	})
}

// RecordDepositCompleted rewards holding a deposit to maturity.
func (s *CreditService) RecordDepositCompleted(owner string) error {
	return s.adjust(owner, s.cfg.DepositCompletedBonus, func(c *models.CreditScore) {
		c.DepositsCompleted++
	})
}

func (s *CreditService) adjust(owner string, delta int, count func(*models.CreditScore)) error {
	score, err := s.store.LoadOrCreateCreditScore(owner)
	if err != nil {
		return err
	}

	before := score.Score
	score.Adjust(delta, s.clock.Now())
	count(score)

	if err := s.store.SaveCreditScore(score); err != nil {
		return err
	}

	s.logger.Debug("credit score adjusted",
		"owner", owner, "delta", delta, "from", before, "to", score.Score)
	return nil
}
