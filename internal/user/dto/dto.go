package dto

type UserFilters struct {
	SearchQuery string
	Role        string
	Page        int
	PageSize    int
}
