package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edubridge/platform/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuditRepository_Insert(t *testing.T) {
	ctx := context.Background()
	user := models.NewUser("student@edubridge.com", models.RoleStudent, models.Profile{FirstName: "Alex"})

	t.Run("writes every column", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		event := models.NewAuditEvent(models.AuditActionLoginSucceeded).
			WithUser(user).
			WithRequest("client-1", "req-1")

		mock.ExpectExec(`INSERT INTO auth_events`).
			WithArgs(event.ID, event.Action, user.ID, user.Email, user.Role,
				"client-1", "req-1", "", event.Timestamp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewAuditRepository(Wrap(db, zap.NewNop()), zap.NewNop())
		require.NoError(t, repo.Insert(ctx, event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps driver errors", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO auth_events`).WillReturnError(errors.New("disk full"))

		repo := NewAuditRepository(Wrap(db, zap.NewNop()), zap.NewNop())
		err = repo.Insert(ctx, models.NewAuditEvent(models.AuditActionLogout))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert audit event")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuditRepository_Recent(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, action, user_id, email, role, client_id, request_id, detail, timestamp\s+FROM auth_events`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "action", "user_id", "email", "role", "client_id", "request_id", "detail", "timestamp",
		}).AddRow(id.String(), "access_denied", "u1", "parent@edubridge.com", "PARENT", "c1", "r1", "admin_panel:read", ts))

	repo := NewAuditRepository(Wrap(db, zap.NewNop()), zap.NewNop())
	events, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, models.AuditActionAccessDenied, events[0].Action)
	assert.Equal(t, models.RoleParent, events[0].Role)
	assert.Equal(t, "admin_panel:read", events[0].Detail)
	assert.Equal(t, ts, events[0].Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())

	none, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
