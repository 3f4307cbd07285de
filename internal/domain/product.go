package domain

import "time"

// Product is a catalog item. Stock is mutated only by the stock ledger's
// locked decrement; everything else reads it as a snapshot.
type Product struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Category  string    `gorm:"index;size:64" json:"category" form:"category"`
	Price     int64     `json:"price" form:"price"` // minor currency units (cents)
	Stock     int       `json:"stock" form:"stock"`
	Image     string    `gorm:"size:1024" json:"image" form:"image"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "shop_product"
}
