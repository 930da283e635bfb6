// Package auth signs the cook dashboard in and out against the configured allow-list.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"foodstall/internal/config"
	"foodstall/internal/logger"
	"foodstall/internal/models"
)

// User is the signed-in admin
type User struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Session is the result of a successful login
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Claims holds the typed JWT payload.
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and checks admin sessions. The allow-list is the only credential source.
type Service struct {
	accounts    []config.AdminAccount
	secret      []byte
	ttl         time.Duration
	revocations Revocations
	logger      *logger.Logger
	now         func() time.Time
}

// NewService creates the admin sign-in service. An empty JWT secret is
// replaced by a random one.
func NewService(cfg config.AuthConfig, revocations Revocations, log *logger.Logger) (*Service, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		log.Warn("auth_secret_generated", "No jwt_secret configured, sessions will not survive a restart", "startup", nil)
	}

	return &Service{
		accounts:    cfg.Admins,
		secret:      secret,
		ttl:         cfg.SessionTTL,
		revocations: revocations,
		logger:      log,
		now:         time.Now,
	}, nil
}

// Login checks an identifier (username, any case, or email) and password
// against the allow-list and issues a signed session token.
func (s *Service) Login(ctx context.Context, identifier, password string) (Session, error) {
	account, ok := s.lookup(identifier)
	if !ok {
		return Session{}, &models.AuthError{Code: models.AuthUserNotFound, Message: "no admin account matches that username"}
	}
	if !CheckPassword(account.PasswordHash, password) {
		return Session{}, &models.AuthError{Code: models.AuthWrongPassword, Message: "incorrect password"}
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Email:    account.Email,
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session: %w", err)
	}

	s.logger.Info("admin_login", "Admin signed in", "", map[string]interface{}{
		"email": account.Email,
	})
	return Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      User{Email: account.Email, Username: account.Username},
	}, nil
}

// Logout revokes the token for the rest of its lifetime. Tokens that are
// already invalid are signed out by definition.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	s.logger.Info("admin_logout", "Admin signed out", "", map[string]interface{}{
		"email": claims.Email,
	})
	return nil
}

// CurrentUser returns the session's user, or nil when signed out.
func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, nil
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}
	return &User{Email: claims.Email, Username: claims.Username}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Service) lookup(identifier string) (config.AdminAccount, bool) {
	id := strings.TrimSpace(identifier)
	for _, a := range s.accounts {
		if strings.EqualFold(a.Username, id) || strings.EqualFold(a.Email, id) {
			return a, true
		}
	}
	return config.AdminAccount{}, false
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password must not be empty")
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
