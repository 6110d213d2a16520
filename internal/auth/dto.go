package auth

import (
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/google/uuid"
)

// RegisterRequest creates a back office account guarded by the admin-creation secret.
type RegisterRequest struct {
	Secret   string `json:"secret"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"userId"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the minted session token alongside the public user view.
// The token never leaves the server in the body; controllers set it as a cookie.
type LoginResult struct {
	Token     string
	ExpiresIn int
	User      *users.UserDTO
}
