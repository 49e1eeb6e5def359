package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

type testDocument struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestMemoryDocumentRepository(t *testing.T) {
	repo := NewMemoryDocumentRepository[testDocument]()
	ctx := context.Background()

	t.Run("Error_GetMissing", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Success_PutGetIsolated", func(t *testing.T) {
		doc := &testDocument{Name: "b", Items: []string{"x"}}
		require.NoError(t, repo.Put(ctx, "b", doc))
		doc.Items[0] = "mutated"

		got, err := repo.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, got.Items)

		got.Items[0] = "mutated"
		again, err := repo.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, again.Items)
	})

	t.Run("Success_ListOrderedByName", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "a", &testDocument{Name: "a"}))

		docs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].Name)
		assert.Equal(t, "b", docs[1].Name)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "a"))
		assert.ErrorIs(t, repo.Delete(ctx, "a"), apperrors.ErrNotFound)
	})
}

func TestSQLDocumentRepository_PostgreSQL(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewPostgreSQLDocumentRepository[testDocument](db, "issuers")
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (kind, name) DO UPDATE")).
		WithArgs("issuers", "digicert", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM vault_documents WHERE kind = $1 AND name = $2")).
		WithArgs("issuers", "digicert").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"name":"digicert","items":["a"]}`)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM vault_documents WHERE kind = $1 AND name = $2")).
		WithArgs("issuers", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM vault_documents WHERE kind = $1 AND name = $2")).
		WithArgs("issuers", "digicert").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Put(ctx, "digicert", &testDocument{Name: "digicert"}))

	doc, err := repo.Get(ctx, "digicert")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, doc.Items)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "digicert"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDocumentRepository_MySQL(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLDocumentRepository[testDocument](db, "contacts")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM vault_documents WHERE kind = ? ORDER BY name")).
		WithArgs("contacts").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).
			AddRow([]byte(`{"name":"a"}`)).
			AddRow([]byte(`{"name":"b"}`)))

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[1].Name)
}
