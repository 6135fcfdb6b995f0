package dto

import "equipment-portal/internal/entities"

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpstreamAuthDTO - ответ backend на login и refresh.
type UpstreamAuthDTO struct {
	AccessToken  string        `json:"accessToken"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
	User         entities.User `json:"user"`
}

// Access: старые версии backend отдают токен в поле token.
func (u UpstreamAuthDTO) Access() string {
	if u.AccessToken != "" {
		return u.AccessToken
	}
	return u.Token
}

type SessionDTO struct {
	User      entities.User `json:"user"`
	ExpiresAt string        `json:"expiresAt"`
}
