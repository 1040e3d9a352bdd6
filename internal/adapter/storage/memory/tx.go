package memory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// errNoSQL is returned by the pgx.Tx methods that only make sense against a server.
var errNoSQL = errors.New("memory: SQL is not supported by the embedded store")

// Tx is an all-or-nothing unit over the store. Every mutation records an undo
// step; Rollback before Commit replays them newest first.
type Tx struct {
	store *Store
	id    uint64
	undo  []func()
	done  bool
}

var _ pgx.Tx = (*Tx)(nil)

// ID identifies the transaction in logs.
func (t *Tx) ID() uint64 { return t.id }

func (t *Tx) record(step func()) {
	t.undo = append(t.undo, step)
}

// Commit makes the transaction's mutations permanent and frees the store.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	t.store.sem.Release(1)
	return nil
}

// Rollback reverts every mutation made through t. After Commit it returns
// pgx.ErrTxClosed and changes nothing, matching pgx.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done = true
	t.undo = nil
	t.store.sem.Release(1)
	return nil
}

// Begin would start a savepoint; the embedded store has none.
func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errNoSQL
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errNoSQL
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return errBatch{}
}

func (t *Tx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errNoSQL
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errNoSQL
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errNoSQL
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

func (t *Tx) Conn() *pgx.Conn {
	return nil
}

type errRow struct{}

func (errRow) Scan(dest ...any) error { return errNoSQL }

type errBatch struct{}

func (errBatch) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, errNoSQL }
func (errBatch) Query() (pgx.Rows, error)         { return nil, errNoSQL }
func (errBatch) QueryRow() pgx.Row                { return errRow{} }
func (errBatch) Close() error                     { return nil }
