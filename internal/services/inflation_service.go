package services

import (
	"log/slog"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/config"
)

// InflationService holds the economy's current inflation rate and drifts it
// on a schedule. The rate feeds into loan pricing: high inflation makes
// borrowing more expensive.
//
// Each update fluctuates the rate by up to ±20% of the base rate, clamps it
// to the configured band, then blends 10% of the distance back toward the
// base so the rate mean-reverts instead of random-walking to an extreme.
type InflationService struct {
	cfg    config.InflationConfig
	logger *slog.Logger
	rng    *rand.Rand

	mu   sync.RWMutex
	rate decimal.Decimal
}

func NewInflationService(cfg config.InflationConfig, logger *slog.Logger, rng *rand.Rand) *InflationService {
	return &InflationService{
		cfg:    cfg,
		logger: logger,
		rng:    rng,
		rate:   decimal.NewFromFloat(cfg.BaseRate),
	}
}

// Enabled reports whether inflation adjustments are on.
func (s *InflationService) Enabled() bool { return s.cfg.Enabled }

// CurrentRate returns the current inflation rate.
func (s *InflationService) CurrentRate() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// SetRate pins the rate, clamped to the configured band. Used by admin
// commands and on restore.
func (s *InflationService) SetRate(rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = s.clamp(rate)
}

// Update performs one scheduled drift step and returns the new rate.
func (s *InflationService) Update() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := decimal.NewFromFloat(s.cfg.BaseRate)

	// Fluctuate by up to 20% of the base rate in either direction.
	swing := (s.rng.Float64() - 0.5) * 0.4 * s.cfg.BaseRate
	next := s.rate.Add(decimal.NewFromFloat(swing))
	next = s.clamp(next)

	// Mean-revert: pull 10% of the way back toward the base rate.
	next = next.Add(base.Sub(next).Mul(decimal.NewFromFloat(0.1)))
	s.rate = next.Round(6)

	s.logger.Info("inflation updated", "rate", s.rate)
	return s.rate
}

// AdjustDepositRate returns base plus half the current inflation rate,
// floored at zero. Deposits track inflation at half strength; loans track it
// fully. No adjustment when inflation is disabled.
func (s *InflationService) AdjustDepositRate(base decimal.Decimal) decimal.Decimal {
	if !s.cfg.Enabled {
		return base
	}
	adjusted := base.Add(s.CurrentRate().Mul(decimal.NewFromFloat(0.5)))
	if adjusted.IsNegative() {
		return decimal.Zero
	}
	return adjusted
}

// AdjustLoanRate returns base plus the full current inflation rate, floored
// at zero. No adjustment when inflation is disabled.
func (s *InflationService) AdjustLoanRate(base decimal.Decimal) decimal.Decimal {
	if !s.cfg.Enabled {
		return base
	}
	adjusted := base.Add(s.CurrentRate())
	if adjusted.IsNegative() {
		return decimal.Zero
	}
	return adjusted
}

func (s *InflationService) clamp(rate decimal.Decimal) decimal.Decimal {
	min := decimal.NewFromFloat(s.cfg.MinRate)
	max := decimal.NewFromFloat(s.cfg.MaxRate)
	if rate.LessThan(min) {
		return min
	}
	if rate.GreaterThan(max) {
		return max
	}
	return rate
}
