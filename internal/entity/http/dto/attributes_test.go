package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
)

func TestAttributesRequest_Validate(t *testing.T) {
	t.Run("Success_Nil", func(t *testing.T) {
		var req *AttributesRequest
		assert.NoError(t, req.Validate())
	})

	t.Run("Success_Window", func(t *testing.T) {
		req := &AttributesRequest{NotBefore: domain.Int64Ptr(10), Expires: domain.Int64Ptr(20)}
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_ExpiresBeforeNotBefore", func(t *testing.T) {
		req := &AttributesRequest{NotBefore: domain.Int64Ptr(20), Expires: domain.Int64Ptr(10)}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exp")
	})
}

func TestAttributesRequest_ToPatch(t *testing.T) {
	var empty *AttributesRequest
	assert.Nil(t, empty.ToPatch())

	req := &AttributesRequest{Enabled: domain.BoolPtr(false), Expires: domain.Int64Ptr(5)}
	patch := req.ToPatch()
	require.NotNil(t, patch)
	assert.False(t, *patch.Enabled)
	assert.Nil(t, patch.NotBefore)
	assert.Equal(t, int64(5), *patch.Expires)
}

func TestUpdateRequest(t *testing.T) {
	t.Run("Success_TagsOnly", func(t *testing.T) {
		req := UpdateRequest{Tags: map[string]string{"env": "dev"}}
		require.NoError(t, req.Validate())

		patch := req.ToPatch()
		assert.Nil(t, patch.Attributes)
		assert.Equal(t, domain.Tags{"env": "dev"}, patch.Tags)
	})

	t.Run("Error_InvalidAttributes", func(t *testing.T) {
		req := UpdateRequest{
			Attributes: &AttributesRequest{NotBefore: domain.Int64Ptr(2), Expires: domain.Int64Ptr(1)},
		}
		assert.Error(t, req.Validate())
	})
}

func TestDeletedFields(t *testing.T) {
	ids := domain.NewIDBuilder("https://vault.test/")
	record := &domain.Record[string]{Name: "password", DeletedDate: 10, ScheduledPurgeDate: 20}

	fields := DeletedFieldsFromRecord(ids, domain.KindSecret, record)
	assert.Equal(t, DeletedFields{
		RecoveryID:         "https://vault.test/deletedsecrets/password",
		DeletedDate:        10,
		ScheduledPurgeDate: 20,
	}, fields)

	deleted := &domain.DeletedRecord[string]{Record: record, RecoveryID: "rid", DeletedDate: 1, ScheduledPurgeDate: 2}
	assert.Equal(t, DeletedFields{RecoveryID: "rid", DeletedDate: 1, ScheduledPurgeDate: 2}, MapDeletedFields(deleted))
}

func TestRestoreRequest_Validate(t *testing.T) {
	assert.NoError(t, (&RestoreRequest{Value: "blob"}).Validate())
	assert.Error(t, (&RestoreRequest{}).Validate())
	assert.Error(t, (&RestoreRequest{Value: "   "}).Validate())
}
