package user

import (
	"context"
	"testing"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	users map[string]*User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*User)}
}

func (m *memStore) Create(_ context.Context, u *User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, u *User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) FindByCPF(_ context.Context, cpf string) (*User, error) {
	for _, u := range m.users {
		if u.CPF == cpf {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) List(_ context.Context, _ ListFilter) ([]User, int64, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func testService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	log, err := logger.NewLogrusLogger("error", "text", "stdout", "")
	require.NoError(t, err)
	store := newMemStore()
	cfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "test", TokenTTLHrs: 1}
	return NewService(store, cfg, log), store
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:     "Ana Souza",
		Email:    "Ana@Example.com",
		Password: "secret1",
		CPF:      "123.456.789-09",
		Role:     RoleVendor,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email, "email must be lowercased")
	assert.True(t, u.Active)
	assert.NotEmpty(t, u.ID)

	result, err := svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotNil(t, result.User.LastLoginAt)

	// login matches the stored (lowercased) email regardless of case
	_, err = svc.Login(ctx, "  ANA@Example.COM ", "secret1")
	assert.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"short name", func(in *RegisterInput) { in.Name = "A" }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "123" }},
		{"bad cpf", func(in *RegisterInput) { in.CPF = "12345678909" }},
		{"bad role", func(in *RegisterInput) { in.Role = "root" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			in := validRegisterInput()
			test.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	dup := validRegisterInput()
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	dup = validRegisterInput()
	dup.Email = "other@example.com"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrCPFTaken)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	u.Active = false
	require.NoError(t, store.Update(ctx, u))

	_, err = svc.Login(ctx, "ana@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestUpdatePermissions(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	self := &auth.Actor{ID: u.ID, Email: u.Email, Role: u.Role}
	other := &auth.Actor{ID: "someone-else", Role: RoleClient}
	admin := &auth.Actor{ID: "admin-1", Email: "root@example.com", Role: RoleAdmin}

	name := "Ana Maria Souza"
	updated, err := svc.Update(ctx, self, u.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	// non-admin cannot touch someone else's account
	_, err = svc.Update(ctx, other, u.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// non-admin cannot change own role
	role := RoleAdmin
	_, err = svc.Update(ctx, self, u.ID, UpdateInput{Role: &role})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// admin can
	updated, err = svc.Update(ctx, admin, u.ID, UpdateInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, updated.Role)
}

func TestDeactivate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	admin := &auth.Actor{ID: "admin-1", Email: "root@example.com", Role: RoleAdmin}

	// admins cannot deactivate themselves
	_, err = svc.Deactivate(ctx, &auth.Actor{ID: u.ID, Role: RoleAdmin}, u.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	deactivated, err := svc.Deactivate(ctx, admin, u.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
}
