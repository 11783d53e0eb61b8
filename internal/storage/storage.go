// Package storage defines the backend-agnostic repository interface for the
// mart layer and the backend registry. Each backend implements the replace
// semantics in its own idiomatic way (Postgres transaction + schema, SQLite
// single-writer transaction, SQL Server schema-qualified tables).
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Bdemirbelul/DemirAI-v2/internal/mart"
)

// Config is the minimal configuration needed to create a repository.
// DSN validation is backend-specific.
type Config struct {
	// Kind selects a registered backend: "postgres" | "sqlite" | "mssql".
	Kind string
	DSN  string
}

// Repository is the single seam between the pipeline and a database.
//
// IMPORTANT: this interface is intentionally minimal. The pipeline is a
// full-rebuild batch job, so the only write operation is an atomic,
// all-or-nothing replacement of the four mart tables.
type Repository interface {
	// Close releases backend resources. Call once at shutdown.
	Close()

	// ReplaceMart replaces all four mart tables with the snapshot inside a
	// single transaction: create tables if needed, delete every existing
	// row (facts first, dimensions after), insert dimensions, insert facts.
	//
	// Readers never observe partial state: either the previous mart or the
	// new snapshot is visible, nothing in between. Any error leaves the
	// previous mart intact.
	ReplaceMart(ctx context.Context, snap *mart.Snapshot) error
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind. Call from an init() function
// in the backend package.
//
// Panics on empty kind, nil factory, or duplicate registration; failing
// fast avoids ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
