package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB is a SQLite-backed Ledger. Each delta runs in a SQL transaction with a
// balance guard and is journaled to the transactions table, so concurrent
// updates to the same account serialize in the database.
type DB struct {
	*sql.DB
}

var _ Ledger = (*DB)(nil)

// NewDB opens (creating if needed) a ledger database at dbPath.
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (player_id) REFERENCES players(id)
		)
	`)
	return err
}

// CreateAccount registers an account with an initial balance.
func (db *DB) CreateAccount(account string, initial int64) error {
	if initial < 0 {
		return fmt.Errorf("initial balance cannot be negative")
	}
	_, err := db.Exec(`INSERT INTO players (id, balance) VALUES (?, ?)`, account, initial)
	return err
}

// Balance returns the current balance of an account.
func (db *DB) Balance(account string) (int64, error) {
	var balance int64
	err := db.QueryRow(`SELECT balance FROM players WHERE id = ?`, account).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%s: %w", account, ErrNoAccount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %v", err)
	}
	return balance, nil
}

// ApplyDelta applies a signed amount to an account and records it.
func (db *DB) ApplyDelta(account string, delta int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRow(`SELECT balance FROM players WHERE id = ?`, account).Scan(&balance)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s: %w", account, ErrNoAccount)
	}
	if err != nil {
		return err
	}
	if balance+delta < 0 {
		return fmt.Errorf("%s has %d, delta %d: %w", account, balance, delta, ErrInsufficientFunds)
	}

	if _, err := tx.Exec(`UPDATE players SET balance = balance + ? WHERE id = ?`, delta, account); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO transactions (player_id, amount) VALUES (?, ?)`, account, delta); err != nil {
		return err
	}

	return tx.Commit()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
