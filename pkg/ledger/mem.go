package ledger

import (
	"fmt"
	"sync"
)

// MemLedger is an in-memory Ledger. A single mutex serializes updates, so
// concurrent deltas against the same account cannot race.
type MemLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemLedger creates an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{balances: make(map[string]int64)}
}

var _ Ledger = (*MemLedger)(nil)

// CreateAccount registers an account with an initial balance. Creating an
// account that already exists is an error.
func (l *MemLedger) CreateAccount(account string, initial int64) error {
	if initial < 0 {
		return fmt.Errorf("initial balance cannot be negative")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[account]; ok {
		return fmt.Errorf("account %s already exists", account)
	}
	l.balances[account] = initial
	return nil
}

// Balance returns the current balance of an account.
func (l *MemLedger) Balance(account string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[account]
	if !ok {
		return 0, fmt.Errorf("%s: %w", account, ErrNoAccount)
	}
	return bal, nil
}

// ApplyDelta applies a signed amount to an account.
func (l *MemLedger) ApplyDelta(account string, delta int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[account]
	if !ok {
		return fmt.Errorf("%s: %w", account, ErrNoAccount)
	}
	if bal+delta < 0 {
		return fmt.Errorf("%s has %d, delta %d: %w", account, bal, delta, ErrInsufficientFunds)
	}
	l.balances[account] = bal + delta
	return nil
}
