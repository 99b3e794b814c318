package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/berkay/portfolio-api/pkg/logger"
)

// Default credentials seeded on first boot.
const (
	defaultUsername = "admin"
	defaultPassword = "admin123"
)

// ErrInvalidCredentials is returned when the username or password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service contains the business logic for admin authentication.
type Service struct {
	repo   Repository
	secret []byte
	expiry time.Duration
}

// NewService creates a new admin Service.
func NewService(repo Repository, jwtSecret string, expiry time.Duration) *Service {
	return &Service{repo: repo, secret: []byte(jwtSecret), expiry: expiry}
}

// Login verifies the credentials and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("load admin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(a.Username)
}

// ChangePassword replaces the password for the given admin.
func (s *Service) ChangePassword(ctx context.Context, username, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, username, string(hash))
}

// ChangeUsername renames the admin account. Tokens issued for the old
// username stop working once it no longer resolves.
func (s *Service) ChangeUsername(ctx context.Context, oldUsername, newUsername string) error {
	return s.repo.UpdateUsername(ctx, oldUsername, newUsername)
}

// issueToken creates a signed JWT carrying the admin username as subject.
func (s *Service) issueToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(s.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// EnsureDefaultAdmin seeds the default admin account when no credential
// record exists yet. Safe to run on every boot.
func EnsureDefaultAdmin(ctx context.Context, repo Repository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	if _, err := repo.Create(ctx, defaultUsername, string(hash)); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	logger.Sugar.Infow("default admin account created", "username", defaultUsername)
	return nil
}
