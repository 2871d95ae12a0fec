package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/infrastructure/storage"
	"fakeseed/internal/metadata"
	"fakeseed/pkg/logger"
)

// copyThreshold is the group size from which complete rows go through COPY
// instead of multi-row INSERT.
const copyThreshold = 500

// Store is a populate.Store backed by PostgreSQL.
type Store struct {
	txm    *TxManager
	copier *BatchInserter
	batch  *BatchExecutor
	buf    *storage.Buffer
}

// NewStore creates a store on pool.
func NewStore(pool *Pool) *Store {
	txm := NewTxManager(pool)
	return &Store{
		txm:    txm,
		copier: NewBatchInserter(txm),
		batch:  NewBatchExecutor(txm),
		buf:    storage.NewBuffer(),
	}
}

// TxManager exposes the store's transaction manager.
func (s *Store) TxManager() *TxManager { return s.txm }

// CreateTable creates the table of schema when it does not exist.
func (s *Store) CreateTable(ctx context.Context, schema metadata.Schema) error {
	ddl := storage.CreateTableSQL(storage.Postgres, schema)
	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, ddl); err != nil {
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
		for _, p := range pending {
			if err := s.write(ctx, p); err != nil {
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

func (s *Store) write(ctx context.Context, p *storage.Pending) error {
	return p.Write(
		func(records []storage.Record) error {
			if len(records) >= copyThreshold {
				return s.copyRows(ctx, p.Schema, records)
			}
			return s.insertRows(ctx, p.Schema, records)
		},
		func(records []storage.Record) error {
			return s.insertReturning(ctx, p.Schema, records)
		},
	)
}

func (s *Store) copyRows(ctx context.Context, schema metadata.Schema, records []storage.Record) error {
	columns := storage.Columns(schema)
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = storage.RowValues(columns, rec.Values)
	}

	n, err := s.copier.CopyFromSlice(ctx, schema.TableName(), columns, rows)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "rows copied", "table", schema.TableName(), "rows", n)
	return nil
}

func (s *Store) insertRows(ctx context.Context, schema metadata.Schema, records []storage.Record) error {
	chunks, err := storage.InsertChunks(storage.Postgres, schema, records)
	if err != nil {
		return err
	}

	queries := make([]BatchQuery, len(chunks))
	for i, chunk := range chunks {
		sql, args, err := chunk.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		queries[i] = BatchQuery{SQL: sql, Args: args}
	}
	return s.batch.ExecuteBatch(ctx, queries)
}

func (s *Store) insertReturning(ctx context.Context, schema metadata.Schema, records []storage.Record) error {
	queries := make([]BatchQuery, len(records))
	for i, rec := range records {
		sql, args, err := storage.InsertReturning(storage.Postgres, schema, rec).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		queries[i] = BatchQuery{SQL: sql, Args: args}
	}

	return s.batch.QueryRowBatch(ctx, queries, func(i int, row pgx.Row) error {
		dest := storage.ReturningDest(records[i])
		if err := row.Scan(dest...); err != nil {
			return err
		}
		return storage.ApplyReturned(schema, records[i], dest)
	})
}

// Values returns the committed values of field, skipping NULLs.
func (s *Store) Values(ctx context.Context, schema metadata.Schema, field string) ([]any, error) {
	typ, column, ok := storage.ColumnFor(schema, field)
	if !ok {
		return nil, apperror.NewUnknownField(schema.EntityName(), field)
	}

	sql, args, err := storage.SelectColumn(storage.Postgres, schema, column).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var values []any
	err = s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		q := s.txm.GetQuerier(ctx)
		var err error
		switch typ {
		case metadata.TypeUUID:
			values, err = selectValues[uuid.UUID](ctx, q, sql, args)
		case metadata.TypeTinyInt, metadata.TypeSmallInt, metadata.TypeInteger, metadata.TypeBigInt:
			values, err = selectValues[int64](ctx, q, sql, args)
		case metadata.TypeString, metadata.TypeText:
			values, err = selectValues[string](ctx, q, sql, args)
		default:
			values, err = selectRaw(ctx, q, sql, args)
		}
		return err
	})
	if err != nil {
		return nil, apperror.NewStore("values", err).WithDetail("table", schema.TableName())
	}
	return values, nil
}

func selectValues[T any](ctx context.Context, q pgxscan.Querier, sql string, args []any) ([]any, error) {
	var dst []*T
	if err := pgxscan.Select(ctx, q, &dst, sql, args...); err != nil {
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

func selectRaw(ctx context.Context, q Querier, sql string, args []any) ([]any, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []any
	for rows.Next() {
		row, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if row[0] != nil {
			values = append(values, row[0])
		}
	}
	return values, rows.Err()
}
