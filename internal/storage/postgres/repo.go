// Package postgres implements storage.Repository for Postgres using pgx.
//
// The mart lives in the "mart" schema (mart.dim_vehicle, mart.dim_seller,
// mart.dim_time, mart.fact_listings), matching what the downstream
// question-answering service queries.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Bdemirbelul/DemirAI-v2/internal/mart"
	"github.com/Bdemirbelul/DemirAI-v2/internal/storage"
)

// insertBatchRows bounds bind parameters per INSERT. Postgres caps
// placeholders at 65535; the widest table has 13 columns.
const insertBatchRows = 500

type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	r.pool.Close()
}

// ReplaceMart rebuilds all four mart tables inside one transaction.
//
// Delete order is facts first, then dimensions, so foreign keys never dangle
// mid-transaction. Insert order is the reverse. Readers on other
// connections see the previous mart until COMMIT.
func (r *Repo) ReplaceMart(ctx context.Context, snap *mart.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ddl := range createStatements {
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("postgres: ensure mart tables: %w", err)
		}
	}

	for _, table := range []string{"mart.fact_listings", "mart.dim_vehicle", "mart.dim_seller", "mart.dim_time"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("postgres: clear %s: %w", table, err)
		}
	}

	if err := r.insertAll(ctx, tx, "mart.dim_vehicle", storage.DimVehicleColumns, storage.DimVehicleRows(snap.Vehicles)); err != nil {
		return err
	}
	if err := r.insertAll(ctx, tx, "mart.dim_seller", storage.DimSellerColumns, storage.DimSellerRows(snap.Sellers)); err != nil {
		return err
	}
	if err := r.insertAll(ctx, tx, "mart.dim_time", storage.DimTimeColumns, storage.DimTimeRows(snap.Times)); err != nil {
		return err
	}
	if err := r.insertAll(ctx, tx, "mart.fact_listings", storage.FactListingColumns, storage.FactListingRows(snap.Facts)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repo) insertAll(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]any) error {
	for len(rows) > 0 {
		n := len(rows)
		if n > insertBatchRows {
			n = insertBatchRows
		}
		sql, args := buildInsertSQL(table, columns, rows[:n])
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("postgres: insert %s: %w", table, err)
		}
		rows = rows[n:]
	}
	return nil
}

// buildInsertSQL constructs a single multi-row INSERT and its args.
//
// It is pure and deterministic so placeholder numbering can be unit tested
// without a database. Every row must have len(columns) values.
func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")

	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}

	b.WriteString(";")
	return b.String(), args
}

func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// createStatements is the static mart DDL. The schema is fixed by the
// downstream contract, so DDL is spelled out rather than generated.
var createStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS mart`,

	`CREATE TABLE IF NOT EXISTS mart.dim_vehicle (
		vehicle_id         BIGINT PRIMARY KEY,
		manufacturer       TEXT,
		model              TEXT,
		year               BIGINT,
		engine             TEXT,
		transmission       TEXT,
		drivetrain         TEXT,
		fuel_type          TEXT,
		exterior_color     TEXT,
		interior_color     TEXT,
		transmission_class TEXT NOT NULL,
		fuel_class         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS mart.dim_seller (
		seller_id     BIGINT PRIMARY KEY,
		seller_name   TEXT NOT NULL,
		seller_rating DOUBLE PRECISION
	)`,

	`CREATE TABLE IF NOT EXISTS mart.dim_time (
		time_id BIGINT PRIMARY KEY,
		year    BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS mart.fact_listings (
		listing_id          BIGINT PRIMARY KEY,
		vehicle_id          BIGINT NOT NULL REFERENCES mart.dim_vehicle (vehicle_id),
		seller_id           BIGINT REFERENCES mart.dim_seller (seller_id),
		time_id             BIGINT REFERENCES mart.dim_time (time_id),
		price               DOUBLE PRECISION,
		price_drop          DOUBLE PRECISION,
		mileage             DOUBLE PRECISION,
		mpg                 DOUBLE PRECISION,
		driver_rating       DOUBLE PRECISION,
		driver_reviews_num  BIGINT,
		accidents_or_damage BOOLEAN,
		one_owner           BOOLEAN,
		personal_use_only   BOOLEAN
	)`,
}
