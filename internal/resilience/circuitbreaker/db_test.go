package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_QueryContext_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	guarded := NewDB(db)
	mock.ExpectQuery("SELECT symbol FROM watchlist").
		WillReturnRows(sqlmock.NewRows([]string{"symbol"}).AddRow("AAPL"))

	rows, err := guarded.QueryContext(context.Background(), "SELECT symbol FROM watchlist WHERE user_id = $1", "u1")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var sym string
	require.NoError(t, rows.Scan(&sym))
	assert.Equal(t, "AAPL", sym)
	assert.Equal(t, gobreaker.StateClosed, guarded.State())
	assert.Same(t, db, guarded.Unwrap())
}

func TestDB_ExecContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	guarded := NewDB(db)
	mock.ExpectExec("DELETE FROM watchlist").WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := guarded.ExecContext(context.Background(), "DELETE FROM watchlist WHERE user_id = $1", "u1")
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.Equal(t, int64(1), n)
}

func TestDB_OpensAfterConsecutiveFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg := DBConfig()
	cfg.Timeout = 50 * time.Millisecond
	guarded := NewDBWithConfig(db, cfg)

	dbErr := errors.New("connection refused")
	for range 5 {
		mock.ExpectQuery("SELECT").WillReturnError(dbErr)
		_, err := guarded.QueryContext(context.Background(), "SELECT 1")
		assert.ErrorIs(t, err, dbErr)
	}
	require.Equal(t, gobreaker.StateOpen, guarded.State())

	_, err = guarded.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	time.Sleep(80 * time.Millisecond)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	rows, err := guarded.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	_ = rows.Close()
	assert.Equal(t, gobreaker.StateHalfOpen, guarded.State())
}

func TestDB_BeginTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	guarded := NewDB(db)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := guarded.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
