package model

import "time"

// Cart is a document in the `carts` collection, one per user. Items hold
// non-owning references to menu items; the reference is only reconciled when
// a menu item is deleted.
type Cart struct {
	ID        string     `bson:"_id" json:"id"`
	UserID    string     `bson:"user_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

type CartItem struct {
	MenuItemID string    `bson:"menu_item_id" json:"menuItemId"`
	Name       string    `bson:"name" json:"name"`
	Price      float64   `bson:"price" json:"price"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	AddedAt    time.Time `bson:"added_at" json:"addedAt"`
}
