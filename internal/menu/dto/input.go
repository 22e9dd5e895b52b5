package dto

type CreateMenuItemInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" binding:"required"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageURL"`
}

type UpdateMenuItemInput struct {
	ID          string  `json:"-"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" binding:"required"`
	Stock       int     `json:"stock"`
	Sold        int     `json:"sold"`
	ImageURL    string  `json:"imageURL"`
}
