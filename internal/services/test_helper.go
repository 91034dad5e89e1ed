package services

import (
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/crystalrealm/ecobank/internal/config"
	"github.com/crystalrealm/ecobank/internal/gametime"
	"github.com/crystalrealm/ecobank/internal/protection"
	"github.com/crystalrealm/ecobank/internal/storage"
	"github.com/crystalrealm/ecobank/internal/wallet"
)

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func (n *RecordingNotifier) Notify(msg Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, msg)
}

// TestBank bundles a fully wired facade with its fakes.
type TestBank struct {
	Bank     *BankService
	Wallet   *wallet.Memory
	Clock    *FixedClock
	Notifier *RecordingNotifier
	Cal      gametime.Calendar
	Config   *config.Config
	Store    storage.Storage
}

// AdvanceDays moves the clock forward by whole game days.
func (tb *TestBank) AdvanceDays(n int) {
	tb.Clock.Advance(time.Duration(n) * tb.Cal.DayLength())
}

// NewTestBank wires a bank service against in-memory storage and wallet,
// with a fixed clock and seeded randomness. mutate tweaks the default
// configuration before wiring.
func NewTestBank(t *testing.T, mutate func(*config.Config)) *TestBank {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("failed to load default config: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}

	clock := &FixedClock{Instant: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cal := gametime.NewCalendar(cfg.General.SecondsPerGameDay)

	store := storage.SetupTestStore(t, storage.Options{
		InitialCreditScore: cfg.Credit.InitialScore,
		MaxAuditEntries:    cfg.Protection.MaxAuditLogEntries,
		NowFn:              clock.Now,
	})

	taxes := NewTaxService(cfg.Taxes, logger)
	inflation := NewInflationService(cfg.Inflation, logger, rand.New(rand.NewSource(42)))
	credit := NewCreditService(store, cfg.Credit, clock, logger)
	deposits := NewDepositService(cfg.Deposits, taxes, credit, inflation, cal, logger)
	loans := NewLoanService(cfg.Loans, credit, inflation, cal, logger)
	guard := protection.NewAbuseGuard(cfg.Protection, logger, clock.Now)
	metrics := NewMetricsService(prometheus.NewRegistry())
	notifier := &RecordingNotifier{}
	w := wallet.NewMemory()

	bank := NewBankService(
		store, w, notifier, guard,
		deposits, loans, credit, taxes, inflation, metrics,
		cfg.Protection, clock, logger,
	)

	return &TestBank{
		Bank:     bank,
		Wallet:   w,
		Clock:    clock,
		Notifier: notifier,
		Cal:      cal,
		Config:   cfg,
		Store:    store,
	}
}
