// Package errors defines the reason codes returned by the banking facade.
// Validation failures travel as codes, never as Go errors, so adapters can
// render domain-specific messages for each.
package errors

// ReasonCode identifies why a banking operation was rejected, or what a
// successful operation did.
type ReasonCode string

// Account codes.
const (
	AccountFrozen ReasonCode = "account_frozen"
)

// Funds codes.
const (
	InsufficientFunds        ReasonCode = "insufficient_funds"
	InsufficientFundsWithTax ReasonCode = "insufficient_funds_with_tax"
	InsufficientCollateral   ReasonCode = "insufficient_collateral"
)

// Amount codes.
const (
	AmountTooLow  ReasonCode = "amount_too_low"
	AmountTooHigh ReasonCode = "amount_too_high"
)

// Deposit codes.
const (
	DepositsDisabled ReasonCode = "deposits_disabled"
	PlanNotFound     ReasonCode = "plan_not_found"
	TooManyDeposits  ReasonCode = "too_many_deposits"
	DepositNotFound  ReasonCode = "deposit_not_found"
	DepositOpened    ReasonCode = "deposit_opened"
	DepositClosed    ReasonCode = "deposit_closed"
)

// Loan codes.
const (
	LoansDisabled       ReasonCode = "loans_disabled"
	CreditTooLow        ReasonCode = "credit_too_low"
	TooManyLoans        ReasonCode = "too_many_loans"
	LoanNotFound        ReasonCode = "loan_not_found"
	LoanIssued          ReasonCode = "loan_issued"
	LoanPartiallyRepaid ReasonCode = "loan_partially_repaid"
	LoanFullyRepaid     ReasonCode = "loan_fully_repaid"
)

// Protection codes.
const (
	RateLimited     ReasonCode = "rate_limited"
	DepositCooldown ReasonCode = "deposit_cooldown"
	LoanCooldown    ReasonCode = "loan_cooldown"
)

// Admin codes.
const (
	AccountFrozenOK   ReasonCode = "account_frozen_ok"
	AccountUnfrozenOK ReasonCode = "account_unfrozen_ok"
)

// reasonMessages maps codes to their default human-readable messages.
var reasonMessages = map[ReasonCode]string{
	AccountFrozen:            "Account is frozen",
	InsufficientFunds:        "Insufficient wallet balance",
	InsufficientFundsWithTax: "Insufficient wallet balance to cover amount plus transaction tax",
	InsufficientCollateral:   "Insufficient wallet balance to cover the collateral",
	AmountTooLow:             "Amount is below the allowed minimum",
	AmountTooHigh:            "Amount is above the allowed maximum",
	DepositsDisabled:         "Deposits are disabled",
	PlanNotFound:             "Unknown deposit plan",
	TooManyDeposits:          "Active deposit limit reached",
	DepositNotFound:          "No active deposit with that id",
	DepositOpened:            "Deposit opened",
	DepositClosed:            "Deposit closed",
	LoansDisabled:            "Loans are disabled",
	CreditTooLow:             "Credit score is below the loan floor",
	TooManyLoans:             "Active loan limit reached",
	LoanNotFound:             "No open loan with that id",
	LoanIssued:               "Loan issued",
	LoanPartiallyRepaid:      "Loan partially repaid",
	LoanFullyRepaid:          "Loan fully repaid, collateral returned",
	RateLimited:              "Too many operations this hour",
	DepositCooldown:          "Deposit cooldown has not expired",
	LoanCooldown:             "Loan cooldown has not expired",
	AccountFrozenOK:          "Account frozen",
	AccountUnfrozenOK:        "Account unfrozen",
}

// Message returns the default message for a reason code.
func Message(code ReasonCode) string {
	if msg, ok := reasonMessages[code]; ok {
		return msg
	}
	return "Operation failed"
}

// IsValid reports whether the code is a registered reason code.
func IsValid(code ReasonCode) bool {
	_, ok := reasonMessages[code]
	return ok
}
