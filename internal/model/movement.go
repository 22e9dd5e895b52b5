package model

import "time"

// StockMovement is an audit record written alongside every stock adjustment.
type StockMovement struct {
	ID          string    `bson:"_id" json:"id"`
	MenuItemID  string    `bson:"menu_item_id" json:"menuItemId"`
	Delta       int       `bson:"delta" json:"delta"`
	StockBefore int       `bson:"stock_before" json:"stockBefore"`
	StockAfter  int       `bson:"stock_after" json:"stockAfter"`
	Reason      string    `bson:"reason" json:"reason"` // "manual", "bulk", "sale"
	ReferenceID string    `bson:"reference_id,omitempty" json:"referenceId,omitempty"`
	ActorID     string    `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
