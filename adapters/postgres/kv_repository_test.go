package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdash/domain/core"
)

func newMockRepo(t *testing.T, quota int64) (*kvRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewKVRepository(sqlx.NewDb(db, "postgres"), quota).(*kvRepository)
	return repo, mock
}

func TestKVRepositoryGet(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)).
		WithArgs("opsdash_datasets").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	value, err := repo.Get(context.Background(), "opsdash_datasets")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepositoryGetMissing(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestKVRepositorySetWithinQuota(t *testing.T) {
	repo, mock := newMockRepo(t, 100)
	value := []byte(`[{"id":"1"}]`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(octet_length(value)), 0) FROM kv_store WHERE key <> $1`)).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(40))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store`)).
		WithArgs("k", value).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Set(context.Background(), "k", value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepositorySetOverQuota(t *testing.T) {
	repo, mock := newMockRepo(t, 50)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(octet_length(value)), 0)`)).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(45))
	mock.ExpectRollback()

	err := repo.Set(context.Background(), "k", make([]byte, 10))
	assert.ErrorIs(t, err, core.ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepositorySetUnlimitedSkipsUsageQuery(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store`)).
		WithArgs("k", []byte("v")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Set(context.Background(), "k", []byte("v")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepositorySetExecFailure(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.False(t, core.IsQuotaError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t, 0)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_store WHERE key = $1`)).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
