// Package ledger holds player money. The poker engine never reads or
// writes balances except through the Ledger interface; implementations
// must make each per-account update atomic, since the ledger is the only
// resource shared between tables.
package ledger

import "errors"

var (
	// ErrInsufficientFunds is returned when a debit would take an account
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoAccount is returned for operations on an unknown account.
	ErrNoAccount = errors.New("account not found")
)

// Ledger is the money interface consumed by the engine.
type Ledger interface {
	// Balance returns the current balance of an account.
	Balance(account string) (int64, error)

	// ApplyDelta atomically applies a signed amount to an account,
	// failing with ErrInsufficientFunds if the result would be negative.
	ApplyDelta(account string, delta int64) error
}
