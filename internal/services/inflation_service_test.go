package services

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/crystalrealm/ecobank/internal/config"
)

func newInflation(cfg config.InflationConfig, seed int64) *InflationService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewInflationService(cfg, logger, rand.New(rand.NewSource(seed)))
}

func TestInflationStartsAtBaseRate(t *testing.T) {
	s := newInflation(config.InflationConfig{
		Enabled: true, BaseRate: 0.02, MinRate: -0.05, MaxRate: 0.20,
	}, 1)
	assert.True(t, s.CurrentRate().Equal(decimal.NewFromFloat(0.02)))
}

func TestInflationStaysInBand(t *testing.T) {
	cfg := config.InflationConfig{
		Enabled: true, BaseRate: 0.02, MinRate: -0.05, MaxRate: 0.20,
	}
	min := decimal.NewFromFloat(cfg.MinRate)
	max := decimal.NewFromFloat(cfg.MaxRate)

	for seed := int64(0); seed < 5; seed++ {
		s := newInflation(cfg, seed)
		for i := 0; i < 500; i++ {
			rate := s.Update()
			assert.True(t, rate.GreaterThanOrEqual(min) && rate.LessThanOrEqual(max),
				"seed %d step %d: rate %s out of band", seed, i, rate)
		}
	}
}

func TestInflationMeanReverts(t *testing.T) {
	cfg := config.InflationConfig{
		Enabled: true, BaseRate: 0.02, MinRate: -0.05, MaxRate: 0.20,
	}
	s := newInflation(cfg, 7)

	// Pin the rate at the ceiling; the reversion term must pull it down
	// even before any fluctuation could.
	s.SetRate(decimal.NewFromFloat(0.20))
	var below int
	for i := 0; i < 100; i++ {
		if s.Update().LessThan(decimal.NewFromFloat(0.20)) {
			below++
		}
	}
	assert.Greater(t, below, 90, "rate should drift back off the ceiling")
}

func TestInflationSetRateClamps(t *testing.T) {
	s := newInflation(config.InflationConfig{
		Enabled: true, BaseRate: 0.02, MinRate: -0.05, MaxRate: 0.20,
	}, 1)

	s.SetRate(decimal.NewFromInt(5))
	assert.True(t, s.CurrentRate().Equal(decimal.NewFromFloat(0.20)))

	s.SetRate(decimal.NewFromInt(-5))
	assert.True(t, s.CurrentRate().Equal(decimal.NewFromFloat(-0.05)))
}

func TestAdjustRates(t *testing.T) {
	s := newInflation(config.InflationConfig{
		Enabled: true, BaseRate: 0.02, MinRate: -0.05, MaxRate: 0.20,
	}, 1)
	s.SetRate(decimal.NewFromFloat(0.04))

	// Loans track inflation fully, deposits at half strength.
	assert.True(t, s.AdjustLoanRate(decimal.NewFromFloat(0.10)).
		Equal(decimal.NewFromFloat(0.14)))
	assert.True(t, s.AdjustDepositRate(decimal.NewFromFloat(0.03)).
		Equal(decimal.NewFromFloat(0.05)))

	// Deep deflation floors the adjusted rate at zero.
	s.SetRate(decimal.NewFromFloat(-0.05))
	assert.True(t, s.AdjustLoanRate(decimal.NewFromFloat(0.03)).IsZero())
	assert.True(t, s.AdjustDepositRate(decimal.NewFromFloat(0.01)).IsZero())

	disabled := newInflation(config.InflationConfig{
		Enabled: false, BaseRate: 0.02, MinRate: -0.05, MaxRate: 0.20,
	}, 1)
	disabled.SetRate(decimal.NewFromFloat(0.10))
	assert.True(t, disabled.AdjustLoanRate(decimal.NewFromFloat(0.10)).
		Equal(decimal.NewFromFloat(0.10)))
	assert.True(t, disabled.AdjustDepositRate(decimal.NewFromFloat(0.03)).
		Equal(decimal.NewFromFloat(0.03)))
}
