package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
	maxEmailLength    = 255
)

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Token, error)
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
	Me(ctx context.Context, principal domain.Principal) (*domain.User, error)
}

type RegisterInput struct {
	Email       string
	Password    string
	AdminSecret string
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsAdmin     bool      `json:"is_admin"`
}

type claims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users       repository.UserRepository
	secret      []byte
	tokenTTL    time.Duration
	adminSecret string
	bcryptCost  int
	now         func() time.Time
}

type AuthServiceOption func(*AuthService)

// WithAdminSecret enables admin self-registration for callers that present secret.
func WithAdminSecret(secret string) AuthServiceOption {
	return func(s *AuthService) {
		s.adminSecret = secret
	}
}

func WithBCryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration, opts ...AuthServiceOption) *AuthService {
	service := &AuthService{
		users:      users,
		secret:     []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordLength {
		return nil, fmt.Errorf("%w: password must be %d-%d bytes long", domain.ErrValidation, minPasswordLength, maxPasswordLength)
	}

	isAdmin := false
	if input.AdminSecret != "" {
		if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(input.AdminSecret), []byte(s.adminSecret)) != 1 {
			return nil, fmt.Errorf("%w: invalid admin registration secret", domain.ErrValidation)
		}
		isAdmin = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Email: email, PasswordHash: string(hash), IsAdmin: isAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		Admin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expiresAt, IsAdmin: user.IsAdmin}, nil
}

// Authenticate verifies a bearer token and resolves the caller. The role is
// read from the store so a token cannot outlive its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Principal{}, fmt.Errorf("%w: malformed subject", domain.ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, fmt.Errorf("%w: unknown user", domain.ErrUnauthorized)
		}
		return domain.Principal{}, fmt.Errorf("authenticate: %w", err)
	}
	return domain.Principal{UserID: user.ID, Email: user.Email, Role: user.Role()}, nil
}

func (s *AuthService) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	if !principal.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.users.GetByID(ctx, principal.UserID)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if utf8.RuneCountInString(email) > maxEmailLength {
		return "", fmt.Errorf("%w: email must be at most %d characters", domain.ErrValidation, maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return email, nil
}

var _ AuthUseCase = (*AuthService)(nil)
