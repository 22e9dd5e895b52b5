package dto

type MovementFilters struct {
	ItemID   string
	Reason   string
	Page     int
	PageSize int
}
