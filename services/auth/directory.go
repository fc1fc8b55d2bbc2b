package auth

import (
	"sort"
	"sync"
	"time"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/services"
	"github.com/edubridge/platform/services/rbac"
)

// Account is a directory entry: the user record plus its stored credential
type Account struct {
	User         models.User
	PasswordHash []byte
}

// Directory resolves login emails to accounts
type Directory interface {
	Lookup(email string) (*Account, bool)
	Add(account *Account) error
	List() []models.User
}

// MemoryDirectory is an in-memory Directory keyed by normalized email
type MemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryDirectory creates an empty directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{accounts: make(map[string]*Account)}
}

// Lookup finds an account by email, ignoring case and surrounding spaces
func (d *MemoryDirectory) Lookup(email string) (*Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acc, ok := d.accounts[models.NormalizeEmail(email)]
	if !ok {
		return nil, false
	}
	c := &Account{User: *acc.User.Clone(), PasswordHash: acc.PasswordHash}
	return c, true
}

// Add inserts an account; the email must not be taken
func (d *MemoryDirectory) Add(account *Account) error {
	key := models.NormalizeEmail(account.User.Email)
	if key == "" {
		return services.ErrInvalidEmail
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.accounts[key]; exists {
		return services.ErrDuplicateEmail.WithDetail("email", key)
	}
	stored := &Account{User: *account.User.Clone(), PasswordHash: account.PasswordHash}
	stored.User.Email = key
	d.accounts[key] = stored
	return nil
}

// List returns all users ordered by email
func (d *MemoryDirectory) List() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.User, 0, len(d.accounts))
	for _, acc := range d.accounts {
		out = append(out, *acc.User.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

type demoAccount struct {
	email   string
	role    models.Role
	profile models.Profile
}

var demoAccounts = []demoAccount{
	{"alex@student.edu", models.RoleStudent, models.Profile{
		FirstName: "Alex", LastName: "Johnson", Avatar: "/avatars/alex.png", Organization: "Stanford University",
		Bio: "Computer science sophomore",
	}},
	{"sarah@parent.com", models.RoleParent, models.Profile{
		FirstName: "Sarah", LastName: "Miller", Avatar: "/avatars/sarah.png", Phone: "+1-555-0142",
	}},
	{"admin@stanford.edu", models.RoleInstitution, models.Profile{
		FirstName: "Stanford", LastName: "University", Avatar: "/avatars/stanford.png", Organization: "Stanford University",
	}},
	{"hr@techcorp.com", models.RoleCompany, models.Profile{
		FirstName: "TechCorp", LastName: "Recruiting", Avatar: "/avatars/techcorp.png", Organization: "TechCorp",
	}},
	{"admin@edubridge.com", models.RoleAdmin, models.Profile{
		FirstName: "Platform", LastName: "Admin", Avatar: "/avatars/admin.png", Organization: "EduBridge",
	}},
}

// demoEpoch keeps seeded timestamps stable across restarts
var demoEpoch = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

// NewDemoDirectory seeds one account per role. passwordHash is stored on
// every account and is only consulted by a BcryptVerifier.
func NewDemoDirectory(model *rbac.Model, passwordHash []byte) *MemoryDirectory {
	if model == nil {
		model = rbac.DefaultModel()
	}
	d := NewMemoryDirectory()
	for _, demo := range demoAccounts {
		user := models.User{
			ID:          models.StableUserID(demo.email),
			Email:       demo.email,
			Role:        demo.role,
			Status:      models.StatusActive,
			Profile:     demo.profile,
			Permissions: model.Grants(demo.role),
			CreatedAt:   demoEpoch,
			UpdatedAt:   demoEpoch,
		}
		// seeded emails are unique
		_ = d.Add(&Account{User: user, PasswordHash: passwordHash})
	}
	return d
}

// DemoEmail returns the seeded login email for a role
func DemoEmail(role models.Role) (string, bool) {
	for _, demo := range demoAccounts {
		if demo.role == role {
			return demo.email, true
		}
	}
	return "", false
}
