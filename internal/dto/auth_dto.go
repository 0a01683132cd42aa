package dto

import "github.com/google/uuid"

// Identidade is the authenticated operator attached to every request,
// extracted from the JWT claims by the handlers.
type Identidade struct {
	ID     uuid.UUID
	Nome   string
	Perfil string // operador | supervisor | administrador
}

// Admin reports whether the identity may perform administrative actions.
func (i Identidade) Admin() bool { return i.Perfil == "administrador" }

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Nome         string `json:"nome"`
	Perfil       string `json:"perfil"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
