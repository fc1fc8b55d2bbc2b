package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/services"
	"github.com/edubridge/platform/services/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *State) {
	t.Helper()
	state := NewState()
	svc := NewService(NewDemoDirectory(rbac.DefaultModel(), nil), NonEmptyVerifier{}, state, zaptest.NewLogger(t), opts...)
	return svc, state
}

func TestLogin_DemoAccounts(t *testing.T) {
	ctx := context.Background()

	for _, role := range models.AllRoles() {
		t.Run(string(role), func(t *testing.T) {
			svc, state := newTestService(t)
			email, ok := DemoEmail(role)
			require.True(t, ok)

			user, err := svc.Login(ctx, email, "any-password")
			require.NoError(t, err)
			require.NotNil(t, user)

			assert.Equal(t, role, user.Role)
			assert.Equal(t, email, user.Email)
			assert.Equal(t, models.StableUserID(email), user.ID)
			assert.NotEmpty(t, user.Profile.FirstName)
			assert.Equal(t, rbac.DefaultModel().Grants(role), user.Permissions)
			assert.True(t, state.IsAuthenticated())
			assert.Equal(t, user.ID, state.Current().ID)
		})
	}
}

func TestLogin_StudentScenario(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Login(context.Background(), "alex@student.edu", "password123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "Alex", user.Profile.FirstName)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Login(context.Background(), "  ALEX@Student.edu ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alex@student.edu", user.Email)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "password"},
		{"empty password", "alex@student.edu", ""},
		{"empty email", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, state := newTestService(t)

			user, err := svc.Login(context.Background(), tt.email, tt.password)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, services.ErrInvalidCredentials)
			assert.False(t, state.IsAuthenticated())
		})
	}
}

func TestLogin_FailureKeepsExistingUser(t *testing.T) {
	ctx := context.Background()
	svc, state := newTestService(t)

	_, err := svc.Login(ctx, "sarah@parent.com", "pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "intruder@example.com", "pw")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	require.NotNil(t, state.Current())
	assert.Equal(t, "sarah@parent.com", state.Current().Email)
}

func TestLogin_InactiveAccount(t *testing.T) {
	dir := NewMemoryDirectory()
	user := models.NewUser("old@student.edu", models.RoleStudent, models.Profile{})
	user.Status = models.StatusSuspended
	require.NoError(t, dir.Add(&Account{User: *user}))

	state := NewState()
	svc := NewService(dir, NonEmptyVerifier{}, state, zaptest.NewLogger(t))

	_, err := svc.Login(context.Background(), "old@student.edu", "pw")
	assert.ErrorIs(t, err, services.ErrAccountDisabled)
	assert.False(t, state.IsAuthenticated())
}

func TestLogin_DelayHonoursCancellation(t *testing.T) {
	svc, state := newTestService(t, WithLoginDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	user, err := svc.Login(ctx, "alex@student.edu", "pw")
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, state.IsAuthenticated())
}

func TestLogin_DelayElapses(t *testing.T) {
	svc, _ := newTestService(t, WithLoginDelay(20*time.Millisecond))

	start := time.Now()
	_, err := svc.Login(context.Background(), "alex@student.edu", "pw")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestLogout(t *testing.T) {
	svc, state := newTestService(t)

	// logout while anonymous is a no-op
	svc.Logout()
	assert.False(t, state.IsAuthenticated())

	_, err := svc.Login(context.Background(), "hr@techcorp.com", "pw")
	require.NoError(t, err)

	svc.Logout()
	assert.False(t, state.IsAuthenticated())
	assert.Nil(t, svc.CurrentUser())

	svc.Logout()
	assert.False(t, state.IsAuthenticated())
}

func TestSetCurrentUser(t *testing.T) {
	svc, state := newTestService(t)
	restored := &models.User{ID: "restored-1", Email: "x@y.z", Role: models.RoleCompany}

	svc.SetCurrentUser(restored)
	require.True(t, state.IsAuthenticated())
	assert.Equal(t, "restored-1", svc.CurrentUser().ID)

	// caller mutations do not leak into the state
	restored.Role = models.RoleAdmin
	assert.Equal(t, models.RoleCompany, svc.CurrentUser().Role)

	svc.SetCurrentUser(nil)
	assert.False(t, state.IsAuthenticated())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("new account logs in", func(t *testing.T) {
		svc, state := newTestService(t)

		user, err := svc.Register(ctx, RegisterInput{
			Email:    "new@student.edu",
			Password: "secret",
			Role:     models.RoleStudent,
			Profile:  models.Profile{FirstName: "New", LastName: "Student"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, user.Role)
		assert.Equal(t, "new@student.edu", user.Email)
		assert.NotEmpty(t, user.Permissions)
		assert.Equal(t, user.ID, state.Current().ID)

		_, ok := svc.Directory().Lookup("new@student.edu")
		assert.True(t, ok)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, state := newTestService(t)

		_, err := svc.Register(ctx, RegisterInput{Email: "Alex@student.edu", Password: "pw", Role: models.RoleStudent})
		assert.ErrorIs(t, err, services.ErrDuplicateEmail)
		assert.False(t, state.IsAuthenticated())
	})

	t.Run("invalid role", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Register(ctx, RegisterInput{Email: "t@school.edu", Password: "pw", Role: "PRINCIPAL"})
		assert.ErrorIs(t, err, services.ErrInvalidRole)
	})

	t.Run("missing password", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Register(ctx, RegisterInput{Email: "t@school.edu", Role: models.RoleParent})
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})
}

func TestRegister_CancelledDuringDelayStoresNothing(t *testing.T) {
	svc, state := newTestService(t, WithLoginDelay(200*time.Millisecond))
	in := RegisterInput{Email: "late@student.edu", Password: "secret", Role: models.RoleStudent}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	user, err := svc.Register(ctx, in)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, state.IsAuthenticated())

	_, ok := svc.Directory().Lookup("late@student.edu")
	assert.False(t, ok)

	user, err = svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, user.ID, state.Current().ID)
}

func TestRegister_PasswordTooLongForBcrypt(t *testing.T) {
	state := NewState()
	svc := NewService(NewDemoDirectory(nil, nil), NewBcryptVerifier(bcrypt.MinCost), state, zaptest.NewLogger(t))

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "long@student.edu",
		Password: strings.Repeat("x", 80),
		Role:     models.RoleStudent,
	})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.True(t, services.IsValidationError(err))
	assert.False(t, services.IsInternalError(err))
	assert.False(t, state.IsAuthenticated())

	_, ok := svc.Directory().Lookup("long@student.edu")
	assert.False(t, ok)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "long@student.edu",
		Password: strings.Repeat("x", MaxPasswordBytes),
		Role:     models.RoleStudent,
	})
	assert.NoError(t, err)
}

func TestBcryptVerifier(t *testing.T) {
	ctx := context.Background()
	verifier := NewBcryptVerifier(bcrypt.MinCost)
	hash, err := verifier.Hash("demo123")
	require.NoError(t, err)

	state := NewState()
	svc := NewService(NewDemoDirectory(nil, hash), verifier, state, zaptest.NewLogger(t))

	_, err = svc.Login(ctx, "admin@edubridge.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.False(t, state.IsAuthenticated())

	user, err := svc.Login(ctx, "admin@edubridge.com", "demo123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	registered, err := svc.Register(ctx, RegisterInput{Email: "c@corp.com", Password: "s3cret", Role: models.RoleCompany})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCompany, registered.Role)

	svc.Logout()
	_, err = svc.Login(ctx, "c@corp.com", "other")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "c@corp.com", "s3cret")
	assert.NoError(t, err)

	assert.False(t, verifier.Verify(nil, "demo123"))
	assert.False(t, verifier.Verify(&Account{}, "demo123"))
}

func TestMemoryDirectory(t *testing.T) {
	dir := NewDemoDirectory(nil, nil)

	users := dir.List()
	require.Len(t, users, len(models.AllRoles()))
	for i := 1; i < len(users); i++ {
		assert.Less(t, users[i-1].Email, users[i].Email)
	}

	acc, ok := dir.Lookup("admin@stanford.edu")
	require.True(t, ok)
	acc.User.Role = models.RoleAdmin
	again, _ := dir.Lookup("admin@stanford.edu")
	assert.Equal(t, models.RoleInstitution, again.User.Role)

	assert.ErrorIs(t, dir.Add(&Account{User: models.User{Email: "  "}}), services.ErrInvalidEmail)
}

func TestConcurrentLoginsAreLastWriteWins(t *testing.T) {
	svc, state := newTestService(t)
	ctx := context.Background()
	emails := []string{"alex@student.edu", "sarah@parent.com", "hr@techcorp.com"}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			_, _ = svc.Login(ctx, email, "pw")
		}(emails[i%len(emails)])
	}
	wg.Wait()

	current := state.Current()
	require.NotNil(t, current)
	assert.Contains(t, emails, current.Email)
}
