// Package sqlite provides a populate.Store on a SQLite file through the pure Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/infrastructure/storage"
	"fakeseed/internal/metadata"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens the database at path, creating parent directories.
// The pool is limited to one connection, which SQLite needs for :memory: databases
// and which serializes writers on files.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Store is a populate.Store backed by SQLite.
type Store struct {
	db  *sql.DB
	txm *TxManager
	buf *storage.Buffer
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		txm: NewTxManager(db),
		buf: storage.NewBuffer(),
	}
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// CreateTable creates the table of schema when it does not exist.
func (s *Store) CreateTable(ctx context.Context, schema metadata.Schema) error {
	ddl := storage.CreateTableSQL(storage.SQLite, schema)
	if _, err := s.txm.GetQuerier(ctx).ExecContext(ctx, ddl); err != nil {
		return apperror.NewStore("create table", err).WithDetail("table", schema.TableName())
	}
	return nil
}

func (s *Store) Stage(_ context.Context, schema metadata.Schema, instance any) error {
	return s.buf.Add(schema, instance)
}

// Discard drops staged instances without writing them.
func (s *Store) Discard(_ context.Context) int { return s.buf.Discard() }

// Flush writes everything staged in one transaction. Identifiers assigned by the
// database are written back onto the instances.
func (s *Store) Flush(ctx context.Context) error {
	pending := s.buf.Drain()
	if len(pending) == 0 {
		return nil
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := s.txm.GetQuerier(ctx)
		for _, p := range pending {
			if err := write(ctx, q, p); err != nil {
				return fmt.Errorf("write %s: %w", p.Schema.TableName(), err)
			}
		}
		return nil
	})
	if err != nil {
		return apperror.NewStore("flush", err)
	}
	return nil
}

func write(ctx context.Context, q Querier, p *storage.Pending) error {
	return p.Write(
		func(records []storage.Record) error {
			chunks, err := storage.InsertChunks(storage.SQLite, p.Schema, records)
			if err != nil {
				return err
			}
			for _, chunk := range chunks {
				query, args, err := chunk.ToSql()
				if err != nil {
					return fmt.Errorf("build insert: %w", err)
				}
				if _, err := q.ExecContext(ctx, query, args...); err != nil {
					return err
				}
			}
			return nil
		},
		func(records []storage.Record) error {
			for _, rec := range records {
				query, args, err := storage.InsertReturning(storage.SQLite, p.Schema, rec).ToSql()
				if err != nil {
					return fmt.Errorf("build insert: %w", err)
				}
				dest := storage.ReturningDest(rec)
				if err := q.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
					return err
				}
				if err := storage.ApplyReturned(p.Schema, rec, dest); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// Values returns the committed values of field, skipping NULLs.
func (s *Store) Values(ctx context.Context, schema metadata.Schema, field string) ([]any, error) {
	typ, column, ok := storage.ColumnFor(schema, field)
	if !ok {
		return nil, apperror.NewUnknownField(schema.EntityName(), field)
	}

	query, args, err := storage.SelectColumn(storage.SQLite, schema, column).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	q := s.txm.GetQuerier(ctx)
	var values []any
	switch typ {
	case metadata.TypeUUID:
		values, err = selectValues[uuid.UUID](ctx, q, query, args)
	case metadata.TypeTinyInt, metadata.TypeSmallInt, metadata.TypeInteger, metadata.TypeBigInt:
		values, err = selectValues[int64](ctx, q, query, args)
	case metadata.TypeString, metadata.TypeText:
		values, err = selectValues[string](ctx, q, query, args)
	default:
		values, err = selectRaw(ctx, q, query, args)
	}
	if err != nil {
		return nil, apperror.NewStore("values", err).WithDetail("table", schema.TableName())
	}
	return values, nil
}

func selectValues[T any](ctx context.Context, q sqlscan.Querier, query string, args []any) ([]any, error) {
	var dst []*T
	if err := sqlscan.Select(ctx, q, &dst, query, args...); err != nil {
		return nil, err
	}

	values := make([]any, 0, len(dst))
	for _, v := range dst {
		if v != nil {
			values = append(values, *v)
		}
	}
	return values, nil
}

func selectRaw(ctx context.Context, q Querier, query string, args []any) ([]any, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var values []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v != nil {
			values = append(values, v)
		}
	}
	return values, rows.Err()
}
