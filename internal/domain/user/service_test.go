package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	byEmail map[string]*User
	byID    map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: map[string]*User{}, byID: map[string]*User{}}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func TestSignUpAndLogin(t *testing.T) {
	svc := NewService(newMockUserRepo())

	created, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "customer", created.Role)
	assert.NotEqual(t, "hunter22", created.PasswordHash)

	got, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockUserRepo())

	_, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), "Imposter", "ada@example.com", "other")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewService(newMockUserRepo())

	_, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidLogin)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewService(newMockUserRepo())

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidLogin)
}
