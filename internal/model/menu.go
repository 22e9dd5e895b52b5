package model

// MenuItem is a document in the `menu` collection. Stock is kept directly on
// the item; every decrement clamps at zero.
type MenuItem struct {
	BaseModel
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description" json:"description"`
	Category    string  `bson:"category" json:"category"`
	Price       float64 `bson:"price" json:"price"`
	Stock       int     `bson:"stock" json:"stock"`
	Sold        int     `bson:"sold" json:"sold"`
	ImageURL    string  `bson:"image_url" json:"imageURL"`
}
