package service

import (
	"testing"
	"time"

	"raspadinha/config"
	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserAccounts struct {
	byEmail map[string]*models.User
	byID    map[uint]*models.User
	nextID  uint
}

func newFakeUserAccounts() *fakeUserAccounts {
	return &fakeUserAccounts{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uint]*models.User),
	}
}

func (s *fakeUserAccounts) Create(u *models.User) error {
	s.nextID++
	u.ID = s.nextID
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
	return nil
}

func (s *fakeUserAccounts) GetByID(id uint) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *fakeUserAccounts) GetByEmail(email string) (*models.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "access",
			RefreshSecret: "refresh",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "test",
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserAccounts()
	svc := NewAuthService(authTestConfig(), users)

	u, access, refresh, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	_, _, _, err = svc.Register("Ana", "ana@example.com", "other-pass")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, _, err = svc.Login("ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	logged, _, _, err := svc.Login("ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
}

func TestLoginDeactivatedUser(t *testing.T) {
	users := newFakeUserAccounts()
	svc := NewAuthService(authTestConfig(), users)

	u, _, _, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	u.IsActive = false

	_, _, _, err = svc.Login("ana@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefreshFlow(t *testing.T) {
	users := newFakeUserAccounts()
	svc := NewAuthService(authTestConfig(), users)

	_, _, refresh, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	access, err := svc.Refresh(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = svc.Refresh("garbage")
	assert.Error(t, err)
}
