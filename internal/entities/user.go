package entities

import "equipment-portal/pkg/types"

type Branch struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	IsActive bool     `json:"isActive"`
}

type User struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	BranchID types.ID `json:"branchId"`
	IsActive bool     `json:"isActive"`
}
