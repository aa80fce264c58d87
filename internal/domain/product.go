package domain

type Product struct {
	ID          int64    `json:"product_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       Money    `json:"price"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
}

type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"categoryName"`
}

// Catalog is a product listing as seen by one user.
type Catalog struct {
	UserName string    `json:"user_name"`
	UserRole string    `json:"user_role"`
	Products []Product `json:"products"`
}
