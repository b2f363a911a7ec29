package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/config"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/security"
)

// LoginResult carries the signed token for a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     *models.AdminUser
}

// Service authenticates back-office users.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyToken(tokenString string) (*Claims, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
}

type service struct {
	repo        Repository
	tokens      *TokenIssuer
	passwordCfg config.PasswordConfig
}

// NewService builds the auth service.
func NewService(repo Repository, tokens *TokenIssuer, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer required")
	}
	return &service{repo: repo, tokens: tokens, passwordCfg: passwordCfg}, nil
}

// Login verifies the credentials and issues an access token. Unknown emails
// and wrong passwords share one error so the response does not leak which
// accounts exist.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	if !admin.IsActive {
		return nil, invalidCredentials()
	}

	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	token, expiresAt, err := s.tokens.Issue(admin.ID, admin.Email, admin.Name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token")
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

func (s *service) VerifyToken(tokenString string) (*Claims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return claims, nil
}

func (s *service) GetAdmin(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	return admin, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
