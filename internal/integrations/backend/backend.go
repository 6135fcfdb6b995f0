// Package backend - типизированные обёртки над REST API портала.
// Вся бизнес-логика живёт в backend, здесь только запросы и разбор ответов.
package backend

import (
	"context"
	"net/http"
	"net/url"

	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/types"
)

// Backend собирает все обёртки над одним HTTP-клиентом.
type Backend struct {
	Auth      *AuthAPI
	Equipment *EquipmentAPI
	Tracking  *TrackingAPI
	Users     *UserAPI
	Branches  *BranchAPI
	Transfers *TransferAPI
	Reports   *ReportsAPI
}

func New(client *apiclient.Client) *Backend {
	return &Backend{
		Auth:      &AuthAPI{client: client},
		Equipment: &EquipmentAPI{client: client},
		Tracking:  &TrackingAPI{client: client},
		Users:     &UserAPI{client: client},
		Branches:  &BranchAPI{client: client},
		Transfers: &TransferAPI{client: client},
		Reports:   &ReportsAPI{client: client},
	}
}

func getList[T any](ctx context.Context, c *apiclient.Client, path string, q url.Values) ([]T, *types.Pagination, error) {
	var out []T
	pagination, err := c.Get(ctx, path, q, &out)
	if err != nil {
		return nil, nil, err
	}
	if out == nil {
		out = make([]T, 0)
	}
	return out, pagination, nil
}

func getOne[T any](ctx context.Context, c *apiclient.Client, path string, q url.Values) (*T, error) {
	var out T
	if _, err := c.Get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func send[T any](ctx context.Context, c *apiclient.Client, method, path string, body interface{}) (*T, error) {
	var out T
	if _, err := c.Do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func post[T any](ctx context.Context, c *apiclient.Client, path string, body interface{}) (*T, error) {
	return send[T](ctx, c, http.MethodPost, path, body)
}
