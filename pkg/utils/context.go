package utils

import (
	"context"

	"equipment-portal/pkg/contextkeys"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
)

// Роли портала.
const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleTechnician   = "technician"
	RoleReceptionist = "receptionist"
	RoleUser         = "user"
)

// Principal - кто выполняет запрос. Токен пробрасывается в backend без изменений.
type Principal struct {
	SessionID string
	UserID    types.ID
	Name      string
	Role      string
	BranchID  types.ID
	Token     string
	// Verified: личность подтверждена сессией, подписью токена или backend.
	Verified bool
}

func (p *Principal) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextkeys.PrincipalKey, p)
}

func GetPrincipalFromCtx(ctx context.Context) (*Principal, error) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(*Principal)
	if !ok || p == nil {
		return nil, apperrors.ErrUserNotFoundInContext
	}
	return p, nil
}
