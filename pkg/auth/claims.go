package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dukkanhq/dukkan-backend/pkg/enums"
)

// AccessTokenClaims represents the typed JWT issued by the external identity
// provider and verified at the edge.
type AccessTokenClaims struct {
	UserID     uuid.UUID       `json:"user_id"`
	Email      string          `json:"email,omitempty"`
	Name       string          `json:"name,omitempty"`
	Role       enums.ActorRole `json:"role"`
	SupplierID *uuid.UUID      `json:"supplier_id,omitempty"`
	jwt.RegisteredClaims
}
