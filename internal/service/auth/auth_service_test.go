package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

const jwtSecret = "test-secret"

func newService(repo *MockUserRepository, opts ...AuthServiceOption) *AuthService {
	opts = append([]AuthServiceOption{WithBCryptCost(bcrypt.MinCost)}, opts...)
	return NewAuthService(repo, jwtSecret, 30*time.Minute, opts...)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	repo := &MockUserRepository{}
	service := newService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@example.com" && !u.IsAdmin && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 1
	}).Return(nil).Once()

	user, err := service.Register(context.Background(), RegisterInput{Email: " Alice@Example.com ", Password: "correct horse"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_Admin(t *testing.T) {
	repo := &MockUserRepository{}
	service := newService(repo, WithAdminSecret("open-sesame"))

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.IsAdmin })).Return(nil).Once()

	user, err := service.Register(context.Background(), RegisterInput{Email: "root@example.com", Password: "password1", AdminSecret: "open-sesame"})

	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_ValidationError(t *testing.T) {
	tests := map[string]struct {
		opts  []AuthServiceOption
		input RegisterInput
	}{
		"bad email":            {input: RegisterInput{Email: "not-an-email", Password: "password1"}},
		"long email":           {input: RegisterInput{Email: strings.Repeat("a", 250) + "@example.com", Password: "password1"}},
		"display name":         {input: RegisterInput{Email: "Alice <alice@example.com>", Password: "password1"}},
		"short password":       {input: RegisterInput{Email: "a@example.com", Password: "short"}},
		"wrong admin secret":   {opts: []AuthServiceOption{WithAdminSecret("open-sesame")}, input: RegisterInput{Email: "a@example.com", Password: "password1", AdminSecret: "guess"}},
		"admin not configured": {input: RegisterInput{Email: "a@example.com", Password: "password1", AdminSecret: "anything"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &MockUserRepository{}
			service := newService(repo, tt.opts...)

			_, err := service.Register(context.Background(), tt.input)

			assert.ErrorIs(t, err, domain.ErrValidation)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := &MockUserRepository{}
	service := newService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert user: %w", domain.ErrEmailTaken)).Once()

	_, err := service.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	repo := &MockUserRepository{}
	service := newService(repo)
	ctx := context.Background()

	user := &domain.User{ID: 42, Email: "alice@example.com", PasswordHash: hashed(t, "password1"), IsAdmin: true}
	repo.On("GetByEmail", ctx, "alice@example.com").Return(user, nil).Once()
	repo.On("GetByID", ctx, int64(42)).Return(user, nil).Once()

	token, err := service.Login(ctx, "ALICE@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.True(t, token.IsAdmin)

	principal, err := service.Authenticate(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{UserID: 42, Email: "alice@example.com", Role: domain.RoleAdmin}, principal)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := &MockUserRepository{}
	service := newService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{ID: 1, PasswordHash: hashed(t, "password1")}, nil).Once()
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, fmt.Errorf("get user: %w", domain.ErrNotFound)).Once()

	_, err := service.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = service.Login(ctx, "ghost@example.com", "password1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	repo := &MockUserRepository{}
	service := newService(repo)
	ctx := context.Background()

	sign := func(secret string, method jwt.SigningMethod, sub string, exp time.Time) string {
		tok := jwt.NewWithClaims(method, claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		}})
		s, err := tok.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour)

	tests := map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  sign("other-secret", jwt.SigningMethodHS256, "1", future),
		"wrong method":  sign(jwtSecret, jwt.SigningMethodHS512, "1", future),
		"expired":       sign(jwtSecret, jwt.SigningMethodHS256, "1", time.Now().Add(-time.Minute)),
		"bad subject":   sign(jwtSecret, jwt.SigningMethodHS256, "alice", future),
		"unknown user":  sign(jwtSecret, jwt.SigningMethodHS256, "99", future),
		"empty subject": sign(jwtSecret, jwt.SigningMethodHS256, "", future),
	}
	repo.On("GetByID", ctx, int64(99)).Return(nil, fmt.Errorf("get user 99: %w", domain.ErrNotFound))

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := service.Authenticate(ctx, token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := &MockUserRepository{}
	service := newService(repo)

	_, err := service.Me(context.Background(), domain.Principal{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	repo.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, Email: "e@example.com"}, nil).Once()
	user, err := service.Me(context.Background(), domain.Principal{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, "e@example.com", user.Email)
}
