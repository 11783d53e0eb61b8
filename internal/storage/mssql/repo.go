// Package mssql implements storage.Repository for SQL Server.
//
// Like the Postgres backend it uses the "mart" schema; unlike Postgres,
// schema and table existence checks go through OBJECT_ID/SCHEMA_ID because
// SQL Server has no CREATE TABLE IF NOT EXISTS.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/Bdemirbelul/DemirAI-v2/internal/mart"
	"github.com/Bdemirbelul/DemirAI-v2/internal/storage"
)

// SQL Server caps bind parameters at 2100 per statement; the widest table
// has 13 columns, so 150 rows stays comfortably under the limit.
const insertBatchRows = 150

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

func (r *Repo) ReplaceMart(ctx context.Context, snap *mart.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ddl := range createStatements {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("mssql: ensure mart tables: %w", err)
		}
	}

	for _, table := range []string{"mart.fact_listings", "mart.dim_vehicle", "mart.dim_seller", "mart.dim_time"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("mssql: clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, "mart.dim_vehicle", storage.DimVehicleColumns, storage.DimVehicleRows(snap.Vehicles)); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "mart.dim_seller", storage.DimSellerColumns, storage.DimSellerRows(snap.Sellers)); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "mart.dim_time", storage.DimTimeColumns, storage.DimTimeRows(snap.Times)); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "mart.fact_listings", storage.FactListingColumns, storage.FactListingRows(snap.Facts)); err != nil {
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
			return fmt.Errorf("mssql: insert %s: %w", table, err)
		}
		rows = rows[n:]
	}
	return nil
}

// buildInsertSQL constructs a multi-row INSERT with @pN placeholders.
func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")

	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(msIdent(c))
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
			fmt.Fprintf(&b, "@p%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}

	b.WriteString(";")
	return b.String(), args
}

func msIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

var createStatements = []string{
	`IF SCHEMA_ID('mart') IS NULL EXEC('CREATE SCHEMA mart')`,

	`IF OBJECT_ID('mart.dim_vehicle', 'U') IS NULL
	CREATE TABLE mart.dim_vehicle (
		vehicle_id         BIGINT PRIMARY KEY,
		manufacturer       NVARCHAR(400),
		model              NVARCHAR(400),
		year               BIGINT,
		engine             NVARCHAR(400),
		transmission       NVARCHAR(400),
		drivetrain         NVARCHAR(400),
		fuel_type          NVARCHAR(400),
		exterior_color     NVARCHAR(400),
		interior_color     NVARCHAR(400),
		transmission_class NVARCHAR(40) NOT NULL,
		fuel_class         NVARCHAR(40) NOT NULL
	)`,

	`IF OBJECT_ID('mart.dim_seller', 'U') IS NULL
	CREATE TABLE mart.dim_seller (
		seller_id     BIGINT PRIMARY KEY,
		seller_name   NVARCHAR(400) NOT NULL,
		seller_rating FLOAT
	)`,

	`IF OBJECT_ID('mart.dim_time', 'U') IS NULL
	CREATE TABLE mart.dim_time (
		time_id BIGINT PRIMARY KEY,
		year    BIGINT NOT NULL
	)`,

	`IF OBJECT_ID('mart.fact_listings', 'U') IS NULL
	CREATE TABLE mart.fact_listings (
		listing_id          BIGINT PRIMARY KEY,
		vehicle_id          BIGINT NOT NULL REFERENCES mart.dim_vehicle (vehicle_id),
		seller_id           BIGINT REFERENCES mart.dim_seller (seller_id),
		time_id             BIGINT REFERENCES mart.dim_time (time_id),
		price               FLOAT,
		price_drop          FLOAT,
		mileage             FLOAT,
		mpg                 FLOAT,
		driver_rating       FLOAT,
		driver_reviews_num  BIGINT,
		accidents_or_damage BIT,
		one_owner           BIT,
		personal_use_only   BIT
	)`,
}
