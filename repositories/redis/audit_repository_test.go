package redis

import (
	"context"
	"testing"

	"github.com/edubridge/platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_InsertAndRecent(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	repo := store.AuditRepository(2)

	for _, email := range []string{"a@edubridge.com", "b@edubridge.com", "c@edubridge.com"} {
		event := models.NewAuditEvent(models.AuditActionLoginFailed).WithEmail(email)
		require.NoError(t, repo.Insert(ctx, event))
	}

	list, err := mr.List(DefaultAuditKey)
	require.NoError(t, err)
	assert.Len(t, list, 2, "list is trimmed to maxLen")

	events, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c@edubridge.com", events[0].Email)
	assert.Equal(t, "b@edubridge.com", events[1].Email)
	assert.Equal(t, models.AuditActionLoginFailed, events[0].Action)
}

func TestAuditRepository_SkipsGarbage(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	repo := store.AuditRepository(0)

	require.NoError(t, repo.Insert(ctx, models.NewAuditEvent(models.AuditActionLogout)))
	_, err := mr.Lpush(DefaultAuditKey, "not json")
	require.NoError(t, err)

	events, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.AuditActionLogout, events[0].Action)

	none, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuditRepository_ServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	err := store.AuditRepository(10).Insert(context.Background(), models.NewAuditEvent(models.AuditActionLogout))
	assert.Error(t, err)
}
