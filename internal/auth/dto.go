package auth

import (
	"github.com/google/uuid"

	"github.com/aymanezz/bazarly-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StoreSummary describes the storefront metadata returned after a seller
// login.
type StoreSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	IsVerified  bool      `json:"is_verified"`
	IsSponsored bool      `json:"is_sponsored"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Store        *StoreSummary  `json:"store,omitempty"`
	User         *users.UserDTO `json:"user"`
}

// AdminLoginResponse mirrors LoginResponse while exposing the admin user.
type AdminLoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
