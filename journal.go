// FILE: journal.go
// Package main – Append-only trade journal (SQLite, optional).
//
// Records one row per confirmed order boundary: entries (BUY filled) and
// exits (SELL filled, with realized PnL). The journal is write-only for the
// bot: it is never read back at startup, so position state stays
// memory-resident and is lost on restart as intended. Enabled by setting
// JOURNAL_DB to a file path; empty disables it entirely.

package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Journal handles persistent append-only storage of confirmed trades.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the sqlite journal at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("journal pragma: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			ts       INTEGER NOT NULL,
			product  TEXT    NOT NULL,
			side     TEXT    NOT NULL,
			level    INTEGER NOT NULL,
			vwap     REAL    NOT NULL,
			qty      REAL    NOT NULL,
			pnl      REAL,
			order_id TEXT    NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create trades table: %w", err)
	}
	return &Journal{db: db}, nil
}

// RecordEntry appends a confirmed BUY fill.
func (j *Journal) RecordEntry(product string, level int, vwap, qty float64, orderID string) error {
	_, err := j.db.Exec(
		"INSERT INTO trades (ts, product, side, level, vwap, qty, pnl, order_id) VALUES (?, ?, ?, ?, ?, ?, NULL, ?)",
		time.Now().UTC().Unix(), product, string(SideBuy), level, vwap, qty, orderID,
	)
	return err
}

// RecordExit appends a confirmed SELL fill with its realized PnL.
func (j *Journal) RecordExit(product string, level int, vwap, qty, pnl float64, orderID string) error {
	_, err := j.db.Exec(
		"INSERT INTO trades (ts, product, side, level, vwap, qty, pnl, order_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		time.Now().UTC().Unix(), product, string(SideSell), level, vwap, qty, pnl, orderID,
	)
	return err
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
