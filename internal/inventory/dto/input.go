package dto

const (
	DirectionAdd    = "add"
	DirectionRemove = "remove"
)

type BulkAdjustInput struct {
	ItemID    string
	Direction string // DirectionAdd or DirectionRemove
	Amount    int    // must be positive
	ActorID   string
}

type SaleInput struct {
	ItemID   string
	Quantity int
	OrderID  string
}
