package identity

import (
	"context"
	"testing"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/repositories"
	"github.com/edubridge/platform/repositories/memory"
	"github.com/edubridge/platform/services/auth"
	"github.com/edubridge/platform/services/rbac"
	"github.com/edubridge/platform/services/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newFactory(t *testing.T) *Factory {
	model := rbac.DefaultModel()
	return &Factory{
		Directory: auth.NewDemoDirectory(model, nil),
		Verifier:  auth.NonEmptyVerifier{},
		Evaluator: rbac.NewEvaluator(model),
		Logger:    zaptest.NewLogger(t),
	}
}

func TestFactory_ClientsAreIndependent(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	f := newFactory(t)

	a := f.NewProvider(repositories.Scoped(kv, "client:a"))
	b := f.NewProvider(repositories.Scoped(kv, "client:b"))
	a.Mount(ctx)
	b.Mount(ctx)

	require.True(t, a.Login(ctx, "alex@student.edu", "pw"))
	assert.Nil(t, b.User())
	assert.False(t, b.HasPermission("dashboard", models.ActionRead))

	_, err := kv.Get(ctx, "client:a:"+session.DefaultKey)
	assert.NoError(t, err)

	// the same client on a later request sees its session
	again := f.NewProvider(repositories.Scoped(kv, "client:a"))
	again.Mount(ctx)
	require.NotNil(t, again.User())
	assert.Equal(t, "alex@student.edu", again.User().Email)
}

func TestFactory_SharedDirectory(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	f := newFactory(t)

	a := f.NewProvider(repositories.Scoped(kv, "client:a"))
	a.Mount(ctx)
	ok, err := a.Register(ctx, auth.RegisterInput{Email: "principal@school.edu", Password: "pw", Role: models.RoleInstitution})
	require.NoError(t, err)
	require.True(t, ok)

	b := f.NewProvider(repositories.Scoped(kv, "client:b"))
	b.Mount(ctx)
	assert.True(t, b.Login(ctx, "principal@school.edu", "pw"))
	assert.True(t, b.HasPermission("students", models.ActionCreate))
}
