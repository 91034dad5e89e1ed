package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// SeedSampleData populates a development environment with fake players,
// wallet balances, and a mix of deposits and loans. Never call it in
// production; it goes through the public facade so seeded data obeys every
// business rule.
func SeedSampleData(bank *BankService, w Wallet, owners int, seed uint64, logger *slog.Logger) error {
	faker := gofakeit.New(seed)
	plans := bank.Plans()
	if len(plans) == 0 {
		return fmt.Errorf("no deposit plans configured")
	}

	for i := 0; i < owners; i++ {
		owner := strings.ToLower(faker.Gamertag())
		if err := w.Deposit(owner, decimal.NewFromInt(int64(faker.Number(5000, 50000))), "seed funding"); err != nil {
			return fmt.Errorf("failed to fund wallet for %s: %w", owner, err)
		}

		if faker.Bool() {
			plan := plans[faker.Number(0, len(plans)-1)]
			amount := decimal.NewFromInt(int64(faker.Number(1500, 4000)))
			res, err := bank.OpenDeposit(owner, plan.Name, amount)
			if err != nil {
				return err
			}
			if !res.OK {
				logger.Debug("seed deposit rejected", "owner", owner, "code", res.Code)
			}
		}

		if faker.Bool() {
			amount := decimal.NewFromInt(int64(faker.Number(100, 2000)))
			res, err := bank.TakeLoan(owner, amount)
			if err != nil {
				return err
			}
			if !res.OK {
				logger.Debug("seed loan rejected", "owner", owner, "code", res.Code)
			}
		}
	}

	logger.Info("sample data seeded", "owners", owners)
	return nil
}
