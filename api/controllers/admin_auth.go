package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	authsvc "github.com/rawises/storefront-backend/internal/auth"
	"github.com/rawises/storefront-backend/pkg/logger"
)

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     adminInfo `json:"admin"`
}

type adminInfo struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// AdminLogin authenticates a back-office user and returns a bearer token.
func AdminLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adminLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, adminLoginResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			Admin: adminInfo{
				ID:    result.Admin.ID,
				Email: result.Admin.Email,
				Name:  result.Admin.Name,
			},
		})
	}
}
