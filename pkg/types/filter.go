package types

// Filter - параметры списка, которые шлюз пробрасывает в backend как есть.
type Filter struct {
	Search         string            `json:"search,omitempty"`
	Sort           map[string]string `json:"sort,omitempty"`
	Filter         map[string]string `json:"filter,omitempty"`
	Limit          int               `json:"limit"`
	Offset         int               `json:"offset"`
	Page           int               `json:"page"`
	WithPagination bool              `json:"with_pagination"`
}

type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// Page - список вместе с метаданными пагинации от backend.
type Page[T any] struct {
	List       []T         `json:"list"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// http://localhost:8080/api/equipment?search=treadmill&sort[name]=asc&filter[status]=active&filter[branchId]=1,2&limit=10&page=1
