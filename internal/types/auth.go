package types

import "github.com/golang-jwt/jwt/v5"

// Claims are the access token claims issued by the identity service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Scope  string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}
