package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	_ "modernc.org/sqlite"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/loader"
)

// DB wraps an in-memory sqlite database holding the loaded input
// tables. The store is rebuilt from the flat files on startup; there
// is no persistence beyond them.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

const schema = `
CREATE TABLE sku_master (
	sku           TEXT PRIMARY KEY,
	sku_name      TEXT NOT NULL,
	category      TEXT NOT NULL,
	uom           TEXT NOT NULL,
	reorder_point REAL NOT NULL
);

CREATE TABLE demand_daily (
	date       TEXT NOT NULL,
	sku        TEXT NOT NULL,
	plant      TEXT,
	category   TEXT,
	demand_qty REAL NOT NULL
);
CREATE INDEX idx_demand_sku_date ON demand_daily (sku, date);

CREATE TABLE inventory_daily (
	date       TEXT NOT NULL,
	sku        TEXT NOT NULL,
	warehouse  TEXT NOT NULL,
	onhand_qty REAL NOT NULL
);
CREATE INDEX idx_inventory_date ON inventory_daily (date, sku);

CREATE TABLE inventory_txn (
	txn_datetime TEXT NOT NULL,
	date         TEXT NOT NULL,
	sku          TEXT NOT NULL,
	warehouse    TEXT NOT NULL,
	txn_type     TEXT NOT NULL,
	qty          REAL NOT NULL,
	ref_id       TEXT,
	reason_code  TEXT
);
CREATE INDEX idx_txn_sku_date ON inventory_txn (sku, date);
`

// NewDB opens a fresh in-memory database with the input schema.
func NewDB() (*DB, error) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}

	// A single connection keeps every query on the same in-memory
	// database instance.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(8),
	}, nil
}

// WithTx executes fn within a transaction, limited by the semaphore.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Ingest bulk-loads the parsed input tables. Called once per process
// after loading the flat files.
func (db *DB) Ingest(ctx context.Context, tables *loader.Tables) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		skuStmt, err := tx.PreparexContext(ctx, `INSERT INTO sku_master (sku, sku_name, category, uom, reorder_point) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare sku_master insert: %w", err)
		}
		defer skuStmt.Close()
		for _, m := range tables.SKUMaster {
			if _, err := skuStmt.ExecContext(ctx, m.SKU, m.SKUName, m.Category, m.UOM, m.ReorderPoint); err != nil {
				return fmt.Errorf("insert sku_master row %s: %w", m.SKU, err)
			}
		}

		demandStmt, err := tx.PreparexContext(ctx, `INSERT INTO demand_daily (date, sku, plant, category, demand_qty) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare demand insert: %w", err)
		}
		defer demandStmt.Close()
		for _, d := range tables.Demand {
			if _, err := demandStmt.ExecContext(ctx, d.Date.Format(domain.DateOnly), d.SKU, d.Plant, d.Category, d.DemandQty); err != nil {
				return fmt.Errorf("insert demand row: %w", err)
			}
		}

		invStmt, err := tx.PreparexContext(ctx, `INSERT INTO inventory_daily (date, sku, warehouse, onhand_qty) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare inventory insert: %w", err)
		}
		defer invStmt.Close()
		for _, s := range tables.Inventory {
			if _, err := invStmt.ExecContext(ctx, s.Date.Format(domain.DateOnly), s.SKU, s.Warehouse, s.OnhandQty); err != nil {
				return fmt.Errorf("insert inventory row: %w", err)
			}
		}

		txnStmt, err := tx.PreparexContext(ctx, `INSERT INTO inventory_txn (txn_datetime, date, sku, warehouse, txn_type, qty, ref_id, reason_code) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare txn insert: %w", err)
		}
		defer txnStmt.Close()
		for _, t := range tables.Txns {
			if _, err := txnStmt.ExecContext(ctx, t.TxnDatetime.Format("2006-01-02 15:04:05"), t.Date.Format(domain.DateOnly), t.SKU, t.Warehouse, t.TxnType, t.Qty, t.RefID, t.ReasonCode); err != nil {
				return fmt.Errorf("insert txn row: %w", err)
			}
		}

		return nil
	})
}
