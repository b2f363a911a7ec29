package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rawises/storefront-backend/internal/auth"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
)

type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s stubVerifier) VerifyToken(string) (*auth.Claims, error) {
	return s.claims, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuthRejectsMissingToken(t *testing.T) {
	handler := AdminAuth(stubVerifier{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminAuthRejectsInvalidToken(t *testing.T) {
	verifier := stubVerifier{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")}
	handler := AdminAuth(verifier, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminAuthSeedsContext(t *testing.T) {
	claims := &auth.Claims{
		Email: "ops@rawises.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "2f5c0c3e-9f4e-4e6d-b9ad-1a4a4d1a3f55",
		},
	}
	handler := AdminAuth(stubVerifier{claims: claims}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := AdminIDFromContext(r.Context()); got != claims.Subject {
			t.Fatalf("unexpected admin id %q", got)
		}
		if got := AdminEmailFromContext(r.Context()); got != claims.Email {
			t.Fatalf("unexpected admin email %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminAuthAcceptsRawToken(t *testing.T) {
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"}}
	handler := AdminAuth(stubVerifier{claims: claims}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "raw-token-without-scheme")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
