package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txCols() []string {
	return []string{"id", "sender_id", "receiver_id", "amount", "created_at"}
}

func TestTransactionRepo_Create_AssignsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	txn := &domain.Transaction{SenderAccountID: "u1", ReceiverAccountID: "u2", Amount: 10, CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectQuery("(?s)INSERT INTO transactions .+ RETURNING id").
		WithArgs("u1", "u2", int64(10), now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	require.NoError(t, err)
	assert.Equal(t, int64(42), txn.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := &domain.Transaction{SenderAccountID: "u1", ReceiverAccountID: "u2", Amount: 10, CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs("u1", "u2", int64(10), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	assert.ErrorContains(t, err, "insert transaction")
	assert.Zero(t, txn.ID)
}

func TestTransactionRepo_List_All(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, created_at FROM transactions ORDER BY created_at DESC, id DESC$").
		WillReturnRows(pgxmock.NewRows(txCols()).
			AddRow(int64(2), "u2", "u3", int64(5), now).
			AddRow(int64(1), "u1", "u2", int64(10), now.Add(-time.Minute)))

	txns, err := repo.List(context.Background(), ports.TransactionListParams{})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(2), txns[0].ID)
	assert.Equal(t, "u3", txns[0].ReceiverAccountID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_ByAccountWithLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("WHERE sender_id = \\$1 OR receiver_id = \\$1 ORDER BY created_at DESC, id DESC LIMIT \\$2").
		WithArgs("u9", 10).
		WillReturnRows(pgxmock.NewRows(txCols()).AddRow(int64(7), "u1", "u9", int64(5), time.Now()))

	txns, err := repo.List(context.Background(), ports.TransactionListParams{AccountID: "u9", Limit: 10})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(5), txns[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_EmptyIsNotNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("FROM transactions").
		WithArgs("u3").
		WillReturnRows(pgxmock.NewRows(txCols()))

	txns, err := repo.List(context.Background(), ports.TransactionListParams{AccountID: "u3"})
	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
}

func TestTransactionRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("(?s)SELECT .+ FROM accounts.+FROM transactions").
		WillReturnRows(pgxmock.NewRows([]string{"account_count", "total_balance", "transaction_count", "total_volume"}).
			AddRow(int64(3), int64(77), int64(4), int64(31)))

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.AccountCount)
	assert.Equal(t, int64(77), stats.TotalBalance)
	assert.Equal(t, int64(4), stats.TransactionCount)
	assert.Equal(t, int64(31), stats.TotalVolume)
	assert.NoError(t, mock.ExpectationsWereMet())
}
