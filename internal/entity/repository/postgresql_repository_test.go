package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

type testPayload struct {
	Value string `json:"value"`
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func entityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"seq", "name", "version", "attributes", "tags", "payload",
		"deleted", "deleted_date", "scheduled_purge_date",
	})
}

func TestNewPostgreSQLRepository(t *testing.T) {
	db, _ := newSQLMock(t)

	repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLRepository[testPayload]{}, repo)
}

func TestPostgreSQLRepository_ListByName(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)

	mock.ExpectQuery(regexp.QuoteMeta("FROM vault_entities WHERE kind = $1 AND name = $2 ORDER BY seq")).
		WithArgs("secrets", "password").
		WillReturnRows(entityRows().
			AddRow(1, "password", "v1", []byte(`{"enabled":true,"created":10}`), []byte(`{"env":"dev"}`),
				[]byte(`{"value":"hunter2"}`), false, 0, 0).
			AddRow(2, "password", "v2", []byte(`{"enabled":false,"created":20}`), []byte(`null`),
				[]byte(`{"value":"hunter3"}`), false, 0, 0))

	records, err := repo.ListByName(context.Background(), "password")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, int64(1), records[0].Sequence)
	assert.Equal(t, "v1", records[0].Version)
	assert.True(t, records[0].Attributes.Enabled)
	assert.Equal(t, domain.Tags{"env": "dev"}, records[0].Tags)
	assert.Equal(t, "hunter2", records[0].Payload.Value)

	assert.False(t, records[1].Attributes.Enabled)
	assert.Nil(t, records[1].Tags)
	assert.Equal(t, "hunter3", records[1].Payload.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRepository_GetByNameAndVersion(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewPostgreSQLRepository[testPayload](db, domain.KindKey)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE kind = $1 AND name = $2 AND version = $3")).
			WithArgs("keys", "signing", "v1").
			WillReturnRows(entityRows().
				AddRow(7, "signing", "v1", []byte(`{"enabled":true}`), nil, []byte(`{"value":"k"}`), true, 100, 200))

		record, err := repo.GetByNameAndVersion(context.Background(), "signing", "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), record.Sequence)
		assert.True(t, record.Deleted)
		assert.Equal(t, int64(100), record.DeletedDate)
		assert.Equal(t, int64(200), record.ScheduledPurgeDate)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewPostgreSQLRepository[testPayload](db, domain.KindKey)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE kind = $1 AND name = $2 AND version = $3")).
			WithArgs("keys", "signing", "missing").
			WillReturnRows(entityRows())

		record, err := repo.GetByNameAndVersion(context.Background(), "signing", "missing")
		assert.Nil(t, record)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLRepository_Insert(t *testing.T) {
	record := &domain.Record[testPayload]{
		Name:       "password",
		Version:    "v1",
		Attributes: domain.Attributes{Enabled: true, Created: 10, Updated: 10},
		Payload:    testPayload{Value: "hunter2"},
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO vault_entities")).
			WithArgs("secrets", "password", "v1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), false, 0, 0).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(42))

		err := repo.Insert(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, int64(42), record.Sequence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_UniqueViolation", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO vault_entities")).
			WillReturnError(&pq.Error{Code: pqUniqueViolation})

		err := repo.Insert(context.Background(), record)
		assert.ErrorIs(t, err, domain.ErrVersionExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Error_Database", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO vault_entities")).
			WillReturnError(assert.AnError)

		err := repo.Insert(context.Background(), record)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestPostgreSQLRepository_Update(t *testing.T) {
	record := &domain.Record[testPayload]{Name: "password", Version: "v1"}

	t.Run("Success", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE vault_entities SET attributes = $1, tags = $2")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "secrets", "password", "v1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), record))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE vault_entities SET attributes = $1, tags = $2")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), record), apperrors.ErrNotFound)
	})
}

func TestPostgreSQLRepository_DeletedLifecycle(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewPostgreSQLRepository[testPayload](db, domain.KindCertificate)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("SET deleted = TRUE, deleted_date = $1, scheduled_purge_date = $2")).
		WithArgs(100, 200, "certificates", "cert1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("SET deleted = FALSE, deleted_date = 0, scheduled_purge_date = 0")).
		WithArgs("certificates", "cert1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM vault_entities WHERE kind = $1 AND name = $2 AND version = $3")).
		WithArgs("certificates", "cert1", "v1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM vault_entities WHERE kind = $1 AND name = $2")).
		WithArgs("certificates", "cert1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkDeleted(ctx, "cert1", 100, 200))
	require.NoError(t, repo.ClearDeleted(ctx, "cert1"))
	require.NoError(t, repo.DeleteVersion(ctx, "cert1", "v1"))
	require.NoError(t, repo.DeleteByName(ctx, "cert1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRepository_ListNames(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewPostgreSQLRepository[testPayload](db, domain.KindSecret)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY name ORDER BY MIN(seq)")).
		WithArgs("secrets", true).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("b").AddRow("a"))

	names, err := repo.ListNames(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names)
}
