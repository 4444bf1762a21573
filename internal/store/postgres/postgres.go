// Package postgres implements the catalog repositories on PostgreSQL via
// pgx. A Store runs either directly on the pool or inside a transaction;
// InTx hands callbacks a transactional view of the same repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/termhub/termhub/internal/catalog"
)

// DBTX is the query interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements catalog.Store.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool // nil inside a transaction
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

func (s *Store) Projects() catalog.ProjectRepository             { return &projectRepo{db: s.db} }
func (s *Store) Locales() catalog.LocaleRepository               { return &localeRepo{db: s.db} }
func (s *Store) ProjectLocales() catalog.ProjectLocaleRepository { return &projectLocaleRepo{db: s.db} }
func (s *Store) Terms() catalog.TermRepository                   { return &termRepo{db: s.db} }
func (s *Store) Translations() catalog.TranslationRepository     { return &translationRepo{db: s.db} }

// InTx runs fn inside one transaction. When the Store is already
// transactional, fn joins the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(catalog.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", mapError(err))
	}
	return nil
}

// Ping verifies store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// mapError converts driver errors into catalog error kinds: unique and
// exclusion violations become ErrConflict so callers can treat lost races as
// conflicts rather than server faults.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23P01":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, catalog.ErrConflict)
		}
	}
	return err
}
