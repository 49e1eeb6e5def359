package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

func insertVersion(t *testing.T, repo *MemoryRepository[testPayload], name, version, value string) *domain.Record[testPayload] {
	t.Helper()
	record := &domain.Record[testPayload]{
		Name:       name,
		Version:    version,
		Attributes: domain.Attributes{Enabled: true},
		Payload:    testPayload{Value: value},
	}
	require.NoError(t, repo.Insert(context.Background(), record))
	return record
}

func TestMemoryRepository_InsertAndRead(t *testing.T) {
	repo := NewMemoryRepository[testPayload]()
	ctx := context.Background()

	first := insertVersion(t, repo, "password", "v1", "hunter2")
	second := insertVersion(t, repo, "password", "v2", "hunter3")

	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(2), second.Sequence)

	t.Run("ListByName", func(t *testing.T) {
		records, err := repo.ListByName(ctx, "password")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "v1", records[0].Version)
		assert.Equal(t, "v2", records[1].Version)
	})

	t.Run("GetByNameAndVersion", func(t *testing.T) {
		record, err := repo.GetByNameAndVersion(ctx, "password", "v1")
		require.NoError(t, err)
		assert.Equal(t, "hunter2", record.Payload.Value)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		_, err := repo.GetByNameAndVersion(ctx, "password", "v3")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Error_DuplicateVersion", func(t *testing.T) {
		err := repo.Insert(ctx, &domain.Record[testPayload]{Name: "password", Version: "v1"})
		assert.ErrorIs(t, err, domain.ErrVersionExists)
	})
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository[testPayload]()
	ctx := context.Background()

	record := insertVersion(t, repo, "password", "v1", "hunter2")
	record.Tags = domain.Tags{"mutated": "yes"}

	fetched, err := repo.GetByNameAndVersion(ctx, "password", "v1")
	require.NoError(t, err)
	assert.Nil(t, fetched.Tags)

	fetched.Attributes.Enabled = false
	again, err := repo.GetByNameAndVersion(ctx, "password", "v1")
	require.NoError(t, err)
	assert.True(t, again.Attributes.Enabled)
}

func TestMemoryRepository_Update(t *testing.T) {
	repo := NewMemoryRepository[testPayload]()
	ctx := context.Background()
	insertVersion(t, repo, "password", "v1", "hunter2")

	err := repo.Update(ctx, &domain.Record[testPayload]{
		Name:       "password",
		Version:    "v1",
		Attributes: domain.Attributes{Enabled: false, Updated: 50},
		Tags:       domain.Tags{"env": "dev"},
		Payload:    testPayload{Value: "ignored"},
	})
	require.NoError(t, err)

	record, err := repo.GetByNameAndVersion(ctx, "password", "v1")
	require.NoError(t, err)
	assert.False(t, record.Attributes.Enabled)
	assert.Equal(t, domain.Tags{"env": "dev"}, record.Tags)
	assert.Equal(t, "hunter2", record.Payload.Value)

	err = repo.Update(ctx, &domain.Record[testPayload]{Name: "password", Version: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryRepository_DeleteLifecycle(t *testing.T) {
	repo := NewMemoryRepository[testPayload]()
	ctx := context.Background()
	insertVersion(t, repo, "a", "v1", "1")
	insertVersion(t, repo, "b", "v1", "1")
	insertVersion(t, repo, "a", "v2", "2")

	require.NoError(t, repo.MarkDeleted(ctx, "a", 100, 200))

	records, err := repo.ListByName(ctx, "a")
	require.NoError(t, err)
	for _, r := range records {
		assert.True(t, r.Deleted)
		assert.Equal(t, int64(100), r.DeletedDate)
		assert.Equal(t, int64(200), r.ScheduledPurgeDate)
	}

	deleted, err := repo.ListNames(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, deleted)

	active, err := repo.ListNames(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, active)

	require.NoError(t, repo.ClearDeleted(ctx, "a"))
	active, err = repo.ListNames(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, active)

	require.NoError(t, repo.DeleteVersion(ctx, "a", "v1"))
	records, err = repo.ListByName(ctx, "a")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "v2", records[0].Version)

	require.NoError(t, repo.DeleteByName(ctx, "a"))
	records, err = repo.ListByName(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryRepository_ListNamesOrderedByFirstInsertion(t *testing.T) {
	repo := NewMemoryRepository[testPayload]()
	ctx := context.Background()

	insertVersion(t, repo, "zeta", "v1", "")
	insertVersion(t, repo, "alpha", "v1", "")
	insertVersion(t, repo, "zeta", "v2", "")

	names, err := repo.ListNames(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, names)
}
