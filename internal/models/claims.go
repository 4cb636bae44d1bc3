package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the fields the identity provider puts into its tokens.
// Only UID is required by this service; it becomes the story authorId.
type Claims struct {
	UID                  string `json:"uid"`
	Email                string `json:"email,omitempty"`
	Username             string `json:"username,omitempty"`
	Role                 string `json:"role,omitempty"`
	jwt.RegisteredClaims        // Встраиваем стандартные поля: Issuer, Subject, Audience, ExpiresAt, NotBefore, IssuedAt, ID (JTI)
}
