package backend

import (
	"context"
	"net/url"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/types"
)

// UserAPI - userService.
type UserAPI struct {
	client *apiclient.Client
}

func (a *UserAPI) List(ctx context.Context, q url.Values) ([]entities.User, *types.Pagination, error) {
	return getList[entities.User](ctx, a.client, "/users", q)
}

func (a *UserAPI) Get(ctx context.Context, id types.ID) (*entities.User, error) {
	return getOne[entities.User](ctx, a.client, apiclient.Path("users", id.String()), nil)
}

// BranchAPI - branchService.
type BranchAPI struct {
	client *apiclient.Client
}

func (a *BranchAPI) List(ctx context.Context, q url.Values) ([]entities.Branch, *types.Pagination, error) {
	return getList[entities.Branch](ctx, a.client, "/branches", q)
}

func (a *BranchAPI) Get(ctx context.Context, id types.ID) (*entities.Branch, error) {
	return getOne[entities.Branch](ctx, a.client, apiclient.Path("branches", id.String()), nil)
}
