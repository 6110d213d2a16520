package auth

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the payload carried in the session cookie.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
