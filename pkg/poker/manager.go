package poker

import (
	"fmt"
	"sync"

	"github.com/decred/slog"

	"github.com/tenacioustuna22/PokerWebsite/pkg/ledger"
)

// Manager holds the live tables. Tables are independent: the manager's
// lock guards only the registry, never a table's internals, so actions on
// different tables proceed concurrently.
type Manager struct {
	mu     sync.RWMutex
	log    slog.Logger
	ledger ledger.Ledger
	tables map[string]*Table
}

// NewManager creates a table registry backed by the given ledger.
func NewManager(lgr ledger.Ledger, log slog.Logger) *Manager {
	if log == nil {
		log = slog.Disabled
	}
	return &Manager{
		log:    log,
		ledger: lgr,
		tables: make(map[string]*Table),
	}
}

// CreateTable registers a new table under cfg.ID.
func (m *Manager) CreateTable(cfg TableConfig) (*Table, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("table id is required")
	}
	if cfg.Log == nil {
		cfg.Log = m.log
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[cfg.ID]; ok {
		return nil, fmt.Errorf("table %s already exists", cfg.ID)
	}
	t, err := NewTable(cfg, m.ledger)
	if err != nil {
		return nil, err
	}
	m.tables[cfg.ID] = t
	m.log.Infof("created table %s (blinds %d/%d)", cfg.ID, cfg.SmallBlind, cfg.BigBlind)
	return t, nil
}

// GetTable returns a table by id.
func (m *Manager) GetTable(id string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, fmt.Errorf("table %s not found", id)
	}
	return t, nil
}

// RemoveTable drops a table from the registry. Tables mid-hand cannot be
// removed.
func (m *Manager) RemoveTable(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return fmt.Errorf("table %s not found", id)
	}
	if phase := t.Phase(); phase != PhaseWaiting && phase != PhaseHandComplete {
		return fmt.Errorf("table %s is mid-hand", id)
	}
	delete(m.tables, id)
	return nil
}

// Tables returns the ids of all registered tables.
func (m *Manager) Tables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	return ids
}

// SubmitAction routes an action to a table.
func (m *Manager) SubmitAction(tableID string, seat int, kind ActionKind, amount int64) (ActionResult, error) {
	t, err := m.GetTable(tableID)
	if err != nil {
		return ActionResult{}, err
	}
	return t.SubmitAction(seat, kind, amount)
}
