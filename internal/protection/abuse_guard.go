// Package protection throttles banking operations per owner: a fixed hourly
// operation budget plus separate cooldowns between deposits and between
// loans. It guards the banking core itself and is independent of any HTTP
// rate limiting in front of it.
package protection

import (
	"log/slog"
	"sync"
	"time"

	"github.com/crystalrealm/ecobank/internal/config"
	ecoerrors "github.com/crystalrealm/ecobank/internal/errors"
)

// Operation kinds the guard distinguishes.
const (
	OpDeposit = "deposit"
	OpLoan    = "loan"
)

// AbuseGuard counts operations in a fixed hourly window. When the window
// rolls over, every owner's count resets at once; there is no sliding
// window. Check and Record are separate so a rejected operation never
// consumes budget.
type AbuseGuard struct {
	cfg    config.ProtectionConfig
	logger *slog.Logger
	nowFn  func() time.Time

	mu          sync.Mutex
	windowStart time.Time
	counts      map[string]int
	lastDeposit map[string]time.Time
	lastLoan    map[string]time.Time
}

func NewAbuseGuard(cfg config.ProtectionConfig, logger *slog.Logger, nowFn func() time.Time) *AbuseGuard {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &AbuseGuard{
		cfg:         cfg,
		logger:      logger,
		nowFn:       nowFn,
		windowStart: nowFn(),
		counts:      make(map[string]int),
		lastDeposit: make(map[string]time.Time),
		lastLoan:    make(map[string]time.Time),
	}
}

// Check reports whether the owner may perform the operation now. It returns
// an empty code when allowed.
func (g *AbuseGuard) Check(owner, op string) ecoerrors.ReasonCode {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.nowFn()
	g.rollWindow(now)

	if g.counts[owner] >= g.cfg.MaxOperationsPerHour {
		return ecoerrors.RateLimited
	}

	switch op {
	case OpDeposit:
		cooldown := time.Duration(g.cfg.DepositCooldownSeconds) * time.Second
		if last, ok := g.lastDeposit[owner]; ok && now.Sub(last) < cooldown {
			return ecoerrors.DepositCooldown
		}
	case OpLoan:
		cooldown := time.Duration(g.cfg.LoanCooldownSeconds) * time.Second
		if last, ok := g.lastLoan[owner]; ok && now.Sub(last) < cooldown {
			return ecoerrors.LoanCooldown
		}
	}
	return ""
}

// Record charges one operation against the owner's hourly budget and starts
// the cooldown for the operation kind. Call it only after the operation
// succeeded.
func (g *AbuseGuard) Record(owner, op string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.nowFn()
	g.rollWindow(now)
	g.counts[owner]++

	switch op {
	case OpDeposit:
		g.lastDeposit[owner] = now
	case OpLoan:
		g.lastLoan[owner] = now
	}
}

// Remaining returns the owner's remaining hourly budget.
func (g *AbuseGuard) Remaining(owner string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollWindow(g.nowFn())
	remaining := g.cfg.MaxOperationsPerHour - g.counts[owner]
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *AbuseGuard) rollWindow(now time.Time) {
	if now.Sub(g.windowStart) < time.Hour {
		return
	}
	g.windowStart = now
	g.counts = make(map[string]int)
	g.logger.Debug("operation window reset")
}
