package backend

import (
	"context"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/pkg/apiclient"
)

type AuthAPI struct {
	client *apiclient.Client
}

func (a *AuthAPI) Login(ctx context.Context, creds dto.LoginDTO) (*dto.UpstreamAuthDTO, error) {
	return post[dto.UpstreamAuthDTO](ctx, a.client, "/auth/login", creds)
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*dto.UpstreamAuthDTO, error) {
	return post[dto.UpstreamAuthDTO](ctx, a.client, "/auth/refresh", map[string]string{"refreshToken": refreshToken})
}

// Logout - токен пользователя берётся из контекста.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.Post(ctx, "/auth/logout", nil, nil)
}

func (a *AuthAPI) Me(ctx context.Context) (*entities.User, error) {
	return getOne[entities.User](ctx, a.client, "/auth/me", nil)
}
