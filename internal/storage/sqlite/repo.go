// Package sqlite implements storage.Repository for SQLite.
//
// SQLite has no schemas, so tables are unqualified (dim_vehicle,
// dim_seller, dim_time, fact_listings). Booleans are stored with INTEGER
// affinity (0/1), which the driver round-trips through sql.NullBool.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Bdemirbelul/DemirAI-v2/internal/mart"
	"github.com/Bdemirbelul/DemirAI-v2/internal/storage"
)

const insertBatchRows = 500

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

// ReplaceMart rebuilds all four mart tables in one transaction. SQLite's
// single-writer model makes the swap atomic for readers on other
// connections to the same file.
func (r *Repo) ReplaceMart(ctx context.Context, snap *mart.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ddl := range createStatements {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: ensure mart tables: %w", err)
		}
	}

	for _, table := range []string{"fact_listings", "dim_vehicle", "dim_seller", "dim_time"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+sqlIdent(table)); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, "dim_vehicle", storage.DimVehicleColumns, storage.DimVehicleRows(snap.Vehicles)); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "dim_seller", storage.DimSellerColumns, storage.DimSellerRows(snap.Sellers)); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "dim_time", storage.DimTimeColumns, storage.DimTimeRows(snap.Times)); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "fact_listings", storage.FactListingColumns, storage.FactListingRows(snap.Facts)); err != nil {
		return err
	}

	return tx.Commit()
}

func insertAll(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	for len(rows) > 0 {
		n := len(rows)
		if n > insertBatchRows {
			n = insertBatchRows
		}
		q, args := buildInsertSQL(table, columns, rows[:n])
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", table, err)
		}
		rows = rows[n:]
	}
	return nil
}

// buildInsertSQL constructs a multi-row INSERT with "?" placeholders.
func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")

	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, row[j])
		}
		b.WriteString(")")
	}

	b.WriteString(";")
	return b.String(), args
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS "dim_vehicle" (
		vehicle_id         INTEGER PRIMARY KEY,
		manufacturer       TEXT,
		model              TEXT,
		year               INTEGER,
		engine             TEXT,
		transmission       TEXT,
		drivetrain         TEXT,
		fuel_type          TEXT,
		exterior_color     TEXT,
		interior_color     TEXT,
		transmission_class TEXT NOT NULL,
		fuel_class         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS "dim_seller" (
		seller_id     INTEGER PRIMARY KEY,
		seller_name   TEXT NOT NULL,
		seller_rating REAL
	)`,

	`CREATE TABLE IF NOT EXISTS "dim_time" (
		time_id INTEGER PRIMARY KEY,
		year    INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS "fact_listings" (
		listing_id          INTEGER PRIMARY KEY,
		vehicle_id          INTEGER NOT NULL REFERENCES "dim_vehicle" (vehicle_id),
		seller_id           INTEGER REFERENCES "dim_seller" (seller_id),
		time_id             INTEGER REFERENCES "dim_time" (time_id),
		price               REAL,
		price_drop          REAL,
		mileage             REAL,
		mpg                 REAL,
		driver_rating       REAL,
		driver_reviews_num  INTEGER,
		accidents_or_damage INTEGER,
		one_owner           INTEGER,
		personal_use_only   INTEGER
	)`,
}
