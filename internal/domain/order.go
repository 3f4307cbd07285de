package domain

import "time"

// Order is an immutable record of a completed purchase. Total is the sum of
// its lines' quantity * unit_price, denormalized for listing.
type Order struct {
	ID         int64     `json:"id,string" form:"id"`
	CustomerID int64     `gorm:"index" json:"customer_id,string" form:"customer_id"`
	Total      int64     `json:"total" form:"total"` // minor units
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "shop_order"
}

// OrderLine is one product entry in an order, price pinned at order creation.
type OrderLine struct {
	ID        int64     `json:"id,string" form:"id"`
	OrderID   int64     `gorm:"index" json:"order_id,string" form:"order_id"`
	ProductID int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	Quantity  int       `json:"quantity" form:"quantity"`
	UnitPrice int64     `json:"unit_price" form:"unit_price"` // minor units
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (OrderLine) TableName() string {
	return "shop_order_line"
}
