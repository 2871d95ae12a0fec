package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk-loads rows with the COPY protocol.
// Much faster than INSERT for large groups (hundreds of rows and up).
type BatchInserter struct {
	txManager *TxManager
}

func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice copies rows into table. Must run inside a transaction.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}

	return tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// BatchExecutor sends several statements in one round trip.
type BatchExecutor struct {
	txManager *TxManager
}

func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// BatchQuery represents a query in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// ExecuteBatch executes queries in a single round trip. Must run inside a transaction.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery) error {
	results, err := e.send(ctx, queries)
	if err != nil {
		return err
	}
	defer results.Close()

	for i := range queries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch query %d failed: %w", i, err)
		}
	}
	return results.Close()
}

// QueryRowBatch executes single-row queries in one round trip and hands each
// result row to scan in query order. Must run inside a transaction.
func (e *BatchExecutor) QueryRowBatch(ctx context.Context, queries []BatchQuery, scan func(i int, row pgx.Row) error) error {
	results, err := e.send(ctx, queries)
	if err != nil {
		return err
	}
	defer results.Close()

	for i := range queries {
		if err := scan(i, results.QueryRow()); err != nil {
			return fmt.Errorf("batch query %d failed: %w", i, err)
		}
	}
	return results.Close()
}

func (e *BatchExecutor) send(ctx context.Context, queries []BatchQuery) (pgx.BatchResults, error) {
	tx := e.txManager.GetTx(ctx)
	if tx == nil {
		return nil, fmt.Errorf("batch requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}
	return tx.SendBatch(ctx, batch), nil
}
