package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/config"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/security"
)

type stubRepo struct {
	admins map[string]*models.AdminUser
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	admin, ok := r.admins[strings.ToLower(email)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	for _, admin := range r.admins {
		if admin.ID == id {
			return admin, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) Create(ctx context.Context, admin *models.AdminUser) error {
	r.admins[strings.ToLower(admin.Email)] = admin
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep the tests fast.
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, password string, active bool) (Service, *models.AdminUser) {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        "admin@rawises.com",
		Name:         "Depo Yöneticisi",
		PasswordHash: hash,
		IsActive:     active,
	}
	repo := &stubRepo{admins: map[string]*models.AdminUser{"admin@rawises.com": admin}}

	issuer, err := NewTokenIssuer(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "rawises",
		ExpirationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	svc, err := NewService(repo, issuer, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, admin
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	svc, admin := newTestService(t, "correct horse", true)

	result, err := svc.Login(ctx, "admin@rawises.com", "correct horse")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
	if result.ExpiresAt.IsZero() {
		t.Fatal("expected an expiry")
	}

	claims, err := svc.VerifyToken(result.Token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	id, err := claims.AdminID()
	if err != nil {
		t.Fatalf("AdminID returned error: %v", err)
	}
	if id != admin.ID {
		t.Fatalf("token subject = %s, want %s", id, admin.ID)
	}
	if claims.Email != admin.Email {
		t.Fatalf("token email = %q", claims.Email)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "correct horse", true)

	_, err := svc.Login(ctx, "admin@rawises.com", "battery staple")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "correct horse", true)

	_, unknownErr := svc.Login(ctx, "nobody@rawises.com", "whatever")
	_, wrongErr := svc.Login(ctx, "admin@rawises.com", "wrong")

	if unknownErr == nil || wrongErr == nil {
		t.Fatal("both logins should fail")
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("error messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "correct horse", false)

	_, err := svc.Login(ctx, "admin@rawises.com", "correct horse")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive account, got %v", err)
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "correct horse", true)

	result, err := svc.Login(ctx, "admin@rawises.com", "correct horse")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	tampered := result.Token[:len(result.Token)-2] + "xx"
	_, err = svc.VerifyToken(tampered)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for tampered token, got %v", err)
	}

	_, err = svc.VerifyToken("not-a-jwt")
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
}
