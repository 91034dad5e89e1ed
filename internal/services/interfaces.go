package services

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock returns a settable instant, for tests and simulations.
type FixedClock struct {
	Instant time.Time
}

func (c *FixedClock) Now() time.Time { return c.Instant }

// Advance moves the clock forward.
func (c *FixedClock) Advance(d time.Duration) { c.Instant = c.Instant.Add(d) }

// Wallet is the economy port. The bank never holds wallet money itself; it
// withdraws and deposits through this interface and treats a false return
// from Withdraw as insufficient funds.
type Wallet interface {
	// Balance returns the owner's current wallet balance.
	Balance(owner string) (decimal.Decimal, error)

	// Withdraw removes amount from the wallet, labelled with memo. It
	// returns false without error when the balance does not cover the
	// amount.
	Withdraw(owner string, amount decimal.Decimal, memo string) (bool, error)

	// Deposit adds amount to the wallet, labelled with memo.
	Deposit(owner string, amount decimal.Decimal, memo string) error
}

// Notification is a player-facing message produced by background processing.
type Notification struct {
	OwnerID string
	Title   string
	Body    string
}

// Notifier delivers notifications to online players. Implementations must
// tolerate offline owners by dropping the message.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}

// LogNotifier writes notifications to the log. Standalone deployments use it
// in place of an in-game chat channel.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(msg Notification) {
	n.Logger.Info("notification", "owner", msg.OwnerID, "title", msg.Title, "body", msg.Body)
}
