package domain

import (
	"time"
)

const (
	ProductAvailable = "available"
	ProductSold      = "sold"
)

// Account and AccountPassword hold the sold game-account credentials.
// They are AES-CBC encrypted before persisting and only decrypted for
// the buyer after the sale (or for an admin).
type Product struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string    `gorm:"column:code;unique;not null" json:"code"`
	Title           string    `gorm:"column:title;type:text" json:"title"`
	Account         string    `gorm:"column:account;type:text;not null" json:"account,omitempty"`
	AccountPassword string    `gorm:"column:account_password;type:text;not null" json:"account_password,omitempty"`
	SecurityInfo    string    `gorm:"column:security_info;type:text" json:"security_information"`
	Image           string    `gorm:"column:image;type:text" json:"image"`
	SubImages       string    `gorm:"column:sub_images;type:text" json:"sub_images"`
	Price           int64     `gorm:"column:price;not null" json:"price"`
	CategoryID      uint64    `gorm:"column:category_id" json:"category_id"`
	SellerID        uint      `gorm:"column:seller_id" json:"seller_id"`
	Status          string    `gorm:"column:status;default:available" json:"status"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductCredentials is the decrypted credential payload returned to the
// buyer after a completed order.
type ProductCredentials struct {
	ProductID       uint64 `json:"product_id"`
	Code            string `json:"code"`
	Account         string `json:"account"`
	AccountPassword string `json:"account_password"`
	SecurityInfo    string `json:"security_information"`
}
