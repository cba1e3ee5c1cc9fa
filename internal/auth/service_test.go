package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propfind/propfind/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockUserRepository struct {
	usersByEmail map[string]*User
	nextID       int64

	// Error injection
	findError   error
	createError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*User),
		nextID:       1,
	}
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	u, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) Create(ctx context.Context, u NewUser) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	key := strings.ToLower(u.Email)
	if _, ok := m.usersByEmail[key]; ok {
		return 0, shared.ErrDuplicateEmail
	}
	id := m.nextID
	m.nextID++
	m.usersByEmail[key] = &User{
		ID:           id,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return id, nil
}

var _ Repository = (*mockUserRepository)(nil)

func newTestAuthService() (*Service, *mockUserRepository) {
	repo := newMockUserRepository()
	return NewService(repo, NewHasher(), newTestCodec()), repo
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Phone:           "+1 555 123 4567",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

// ============================================================================
// REGISTER TESTS
// ============================================================================

func TestRegister(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	id, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	stored, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.FirstName)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, NewHasher().Verify("secret1", stored.PasswordHash))
}

func TestRegisterTrimsWhitespace(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	in := validRegisterInput()
	in.FirstName = "  Jane  "
	in.Email = " jane@example.com "

	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	stored, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.FirstName)
	assert.Equal(t, "jane@example.com", stored.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing phone", func(in *RegisterInput) { in.Phone = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"invalid email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "abc"; in.ConfirmPassword = "abc" }},
		{"password mismatch", func(in *RegisterInput) { in.ConfirmPassword = "different1" }},
		{"short phone", func(in *RegisterInput) { in.Phone = "12345" }},
		{"phone with letters", func(in *RegisterInput) { in.Phone = "555-CALL-NOW99" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegisterInput()
			tt.mutate(&in)
			_, err := svc.Register(ctx, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegisterInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDuplicateEmail)

	// Email comparison is case-insensitive.
	in := validRegisterInput()
	in.Email = "JANE@Example.COM"
	_, err = svc.Register(ctx, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDuplicateEmail)

	// No second account was created.
	assert.Len(t, repo.usersByEmail, 1)
}

func TestRegisterDuplicateFromInsert(t *testing.T) {
	// A concurrent registration can slip in between the existence check and
	// the insert; the repository collision maps to the same duplicate error.
	svc, repo := newTestAuthService()
	ctx := context.Background()

	repo.findError = shared.ErrNotFound
	repo.createError = shared.ErrDuplicateEmail

	_, err := svc.Register(ctx, validRegisterInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDuplicateEmail)
}

func TestRegisterDoesNotIssueToken(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	id, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	// Registration returns only the id; a session requires an explicit login.
	profile, token, err := svc.Login(ctx, "jane@example.com", "secret1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.NotEmpty(t, token)
}

// ============================================================================
// LOGIN TESTS
// ============================================================================

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	profile, token, err := svc.Login(ctx, "jane@example.com", "secret1", now)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.Equal(t, "Jane", profile.FirstName)

	// The token round-trips back to the same identity.
	identity, err := newTestCodec().Verify(token, now)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, identity.UserID)
	assert.Equal(t, profile.Email, identity.Email)
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "JANE@EXAMPLE.COM", "secret1", time.Now())
	require.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable to the caller.
	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "secret1", time.Now())
	require.Error(t, unknownErr)
	assert.ErrorIs(t, unknownErr, shared.ErrInvalidCredentials)

	_, _, wrongErr := svc.Login(ctx, "jane@example.com", "wrong-password", time.Now())
	require.Error(t, wrongErr)
	assert.ErrorIs(t, wrongErr, shared.ErrInvalidCredentials)

	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginStorageFailure(t *testing.T) {
	// A storage outage is not a credential failure; it must propagate as an
	// internal error so the handler logs it and answers 500, not 401.
	svc, repo := newTestAuthService()
	ctx := context.Background()

	repo.findError = errors.New("pg: connection refused")

	_, _, err := svc.Login(ctx, "jane@example.com", "secret1", time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.ErrorContains(t, err, "connection refused")
}
