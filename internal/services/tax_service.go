package services

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/config"
)

// TaxService computes the bank's taxes. All taxes are money sinks: collected
// amounts leave the economy rather than moving to another account.
type TaxService struct {
	cfg    config.TaxConfig
	logger *slog.Logger
}

func NewTaxService(cfg config.TaxConfig, logger *slog.Logger) *TaxService {
	return &TaxService{cfg: cfg, logger: logger}
}

// InterestTax returns the tax withheld from an interest payout, and the net
// amount the owner receives.
func (s *TaxService) InterestTax(interest decimal.Decimal) (tax, net decimal.Decimal) {
	if !s.cfg.InterestTaxEnabled || !interest.IsPositive() {
		return decimal.Zero, interest
	}
	tax = interest.Mul(decimal.NewFromFloat(s.cfg.InterestTaxRate)).Round(2)
	return tax, interest.Sub(tax)
}

// TransactionTax returns the surcharge on a transaction of the given amount.
// Zero when the transaction tax is disabled.
func (s *TaxService) TransactionTax(amount decimal.Decimal) decimal.Decimal {
	if !s.cfg.TransactionTaxEnabled || !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromFloat(s.cfg.TransactionTaxRate)).Round(2)
}

// BalanceTax returns the daily wealth tax on total deposited principal. Only
// the portion above the tax-free threshold is taxed: through the progressive
// brackets when any are configured, at the flat rate otherwise.
func (s *TaxService) BalanceTax(totalDeposited decimal.Decimal) decimal.Decimal {
	if !s.cfg.BalanceTaxEnabled {
		return decimal.Zero
	}
	taxable := totalDeposited.Sub(decimal.NewFromFloat(s.cfg.TaxFreeThreshold))
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	if len(s.cfg.ProgressiveBrackets) > 0 {
		return s.ProgressiveTax(taxable)
	}
	return taxable.Mul(decimal.NewFromFloat(s.cfg.BalanceTaxRate)).Round(2)
}

// ProgressiveTax applies the marginal brackets to amount: each bracket taxes
// only the slice of the amount that falls inside it.
func (s *TaxService) ProgressiveTax(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, b := range s.cfg.ProgressiveBrackets {
		from := decimal.NewFromFloat(b.From)
		if amount.LessThanOrEqual(from) {
			continue
		}

		upper := amount
		if b.To > 0 {
			to := decimal.NewFromFloat(b.To)
			if to.LessThan(upper) {
				upper = to
			}
		}

		slice := upper.Sub(from)
		if slice.IsPositive() {
			total = total.Add(slice.Mul(decimal.NewFromFloat(b.Rate)))
		}
	}
	return total.Round(2)
}
