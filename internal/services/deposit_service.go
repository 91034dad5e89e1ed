package services

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/config"
	ecoerrors "github.com/crystalrealm/ecobank/internal/errors"
	"github.com/crystalrealm/ecobank/internal/gametime"
	"github.com/crystalrealm/ecobank/internal/models"
)

// DepositService owns the deposit side of the ledger: plan lookup, opening
// and closing deposits, and daily accrual. Wallet movement and audit logging
// stay in the facade; this service only mutates account state.
type DepositService struct {
	cfg       config.DepositsConfig
	tax       *TaxService
	credit    *CreditService
	inflation *InflationService
	cal       gametime.Calendar
	logger    *slog.Logger

	plans []models.DepositPlan
}

func NewDepositService(cfg config.DepositsConfig, tax *TaxService, credit *CreditService, inflation *InflationService, cal gametime.Calendar, logger *slog.Logger) *DepositService {
	plans := make([]models.DepositPlan, 0, len(cfg.Plans))
	for _, p := range cfg.Plans {
		plans = append(plans, models.DepositPlan{
			Name:      p.Name,
			TermDays:  p.TermDays,
			BaseRate:  models.TermYieldFromFloat(p.BaseRate),
			MinAmount: decimal.NewFromFloat(p.MinAmount),
			MaxAmount: decimal.NewFromFloat(p.MaxAmount),
		})
	}

	return &DepositService{
		cfg:       cfg,
		tax:       tax,
		credit:    credit,
		inflation: inflation,
		cal:       cal,
		logger:    logger,
		plans:     plans,
	}
}

// Plans lists the configured deposit products.
func (s *DepositService) Plans() []models.DepositPlan { return s.plans }

// PlanByName finds a plan by name, case-insensitively.
func (s *DepositService) PlanByName(name string) (*models.DepositPlan, bool) {
	for i := range s.plans {
		if strings.EqualFold(s.plans[i].Name, name) {
			return &s.plans[i], true
		}
	}
	return nil, false
}

// effectiveRate snapshots the plan's current rate including the live
// inflation adjustment.
func (s *DepositService) effectiveRate(plan *models.DepositPlan) models.TermYield {
	return models.NewTermYield(s.inflation.AdjustDepositRate(plan.BaseRate.Decimal()))
}

// Open validates and opens a deposit on the account. A non-empty reason code
// means the request was rejected and the account was not touched.
func (s *DepositService) Open(account *models.BankAccount, planName string, amount decimal.Decimal, now time.Time) (*models.Deposit, ecoerrors.ReasonCode, error) {
	if !s.cfg.Enabled {
		return nil, ecoerrors.DepositsDisabled, nil
	}

	plan, ok := s.PlanByName(planName)
	if !ok {
		return nil, ecoerrors.PlanNotFound, nil
	}
	if amount.LessThan(plan.MinAmount) {
		return nil, ecoerrors.AmountTooLow, nil
	}
	if amount.GreaterThan(plan.MaxAmount) {
		return nil, ecoerrors.AmountTooHigh, nil
	}
	if len(account.ActiveDeposits()) >= s.cfg.MaxPerPlayer {
		return nil, ecoerrors.TooManyDeposits, nil
	}

	deposit := models.NewDeposit(
		newEntryID(), account.OwnerID, plan.Name,
		amount, s.effectiveRate(plan), plan.TermDays,
		now, s.cal,
	)
	if err := account.AddDeposit(deposit); err != nil {
		return nil, "", err
	}

	s.logger.Info("deposit opened",
		"owner", account.OwnerID, "deposit", deposit.ID,
		"plan", plan.Name, "amount", amount)
	return account.DepositByID(deposit.ID), "", nil
}

// CloseOutcome describes a deposit payout.
type CloseOutcome struct {
	Deposit  *models.Deposit
	Payout   decimal.Decimal
	Interest decimal.Decimal
	Tax      decimal.Decimal
	Penalty  decimal.Decimal
	Early    bool
}

// Close pays out a deposit. At or past maturity the owner receives principal
// plus accrued interest net of interest tax and earns a credit bonus. Before
// maturity the early withdrawal penalty applies and no bonus is earned.
func (s *DepositService) Close(account *models.BankAccount, depositID string, now time.Time) (*CloseOutcome, ecoerrors.ReasonCode, error) {
	deposit := account.DepositByID(depositID)
	if deposit == nil || !deposit.IsActive() {
		return nil, ecoerrors.DepositNotFound, nil
	}

	early := !deposit.IsMatured(now)
	penalty := decimal.Zero
	if early {
		penalty = deposit.Amount.
			Mul(decimal.NewFromFloat(s.cfg.EarlyWithdrawalPenaltyRate)).
			Round(2)
	}

	tax, netInterest := s.tax.InterestTax(deposit.AccruedInterest)
	payout := deposit.Amount.Add(netInterest).Sub(penalty)
	if payout.IsNegative() {
		payout = decimal.Zero
	}

	if early {
		deposit.Withdraw(penalty)
	} else {
		deposit.Mature()
	}
	account.Touch(now)

	if !early {
		if err := s.credit.RecordDepositCompleted(account.OwnerID); err != nil {
			return nil, "", err
		}
	}

	s.logger.Info("deposit closed",
		"owner", account.OwnerID, "deposit", deposit.ID,
		"payout", payout, "early", early)

	return &CloseOutcome{
		Deposit:  deposit,
		Payout:   payout,
		Interest: netInterest,
		Tax:      tax,
		Penalty:  penalty,
		Early:    early,
	}, "", nil
}

// UpdateDynamicRates refreshes each active deposit's rate from its plan's
// base rate and the live inflation adjustment, so deposits float with
// inflation day to day. No-op while inflation is disabled.
func (s *DepositService) UpdateDynamicRates(account *models.BankAccount) {
	if !s.inflation.Enabled() {
		return
	}
	for _, d := range account.ActiveDeposits() {
		plan, ok := s.PlanByName(d.PlanName)
		if !ok {
			continue
		}
		d.Rate = s.effectiveRate(plan)
	}
}

// ProcessDaily refreshes dynamic rates and accrues one day of interest on
// every active deposit. Deposits stay ACTIVE and keep accruing past term
// until the owner closes them; the return lists the ones that reached
// maturity this cycle so the owner can be told the payout is ready.
func (s *DepositService) ProcessDaily(account *models.BankAccount, now time.Time) []*models.Deposit {
	s.UpdateDynamicRates(account)

	var matured []*models.Deposit
	for _, d := range account.ActiveDeposits() {
		d.Accrue()
		if d.IsMatured(now) && s.cal.DaysBetween(d.MaturityDate, now) == 0 {
			matured = append(matured, d)
			s.logger.Info("deposit matured",
				"owner", account.OwnerID, "deposit", d.ID, "payout", d.TotalPayout())
		}
	}
	return matured
}

// newEntryID returns a short ledger entry id.
func newEntryID() string {
	return uuid.NewString()[:8]
}
