package domain

import "time"

// Cart status values. A cart leaves active exactly once and never returns.
const (
	CartStatusActive     = "active"
	CartStatusCheckedOut = "checked_out"
	CartStatusAbandoned  = "abandoned"
)

// Cart is a customer's shopping cart. At most one active cart may exist per
// customer; the (customer_id, active_key) unique index enforces it. ActiveKey
// is 1 while the cart is active and NULL afterwards, so any number of
// checked_out/abandoned carts can coexist for the same customer.
type Cart struct {
	ID         int64     `json:"id,string" form:"id"`
	CustomerID int64     `gorm:"uniqueIndex:uk_cart_customer_active,priority:1" json:"customer_id,string" form:"customer_id"`
	Status     string    `gorm:"index;size:16" json:"status" form:"status"`
	ActiveKey  *int64    `gorm:"uniqueIndex:uk_cart_customer_active,priority:2" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Cart) TableName() string {
	return "shop_cart"
}

// CartLine is one product entry in a cart. Unique per (cart_id, product_id);
// repeated adds merge into the quantity. UnitPrice is the price snapshot taken
// when the line was first inserted and is not refreshed on merge.
type CartLine struct {
	ID        int64     `json:"id,string" form:"id"`
	CartID    int64     `gorm:"uniqueIndex:uk_cartline_cart_product,priority:1" json:"cart_id,string" form:"cart_id"`
	ProductID int64     `gorm:"uniqueIndex:uk_cartline_cart_product,priority:2" json:"product_id,string" form:"product_id"`
	Quantity  int       `json:"quantity" form:"quantity"`
	UnitPrice int64     `json:"unit_price" form:"unit_price"` // minor units, pinned at first add
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CartLine) TableName() string {
	return "shop_cart_line"
}
