package domain

import "time"

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"column:user_id;not null" json:"user_id"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalPrice    int64       `gorm:"column:total_price;not null" json:"total_price"`
	PaymentMethod string      `gorm:"column:payment_method" json:"payment_method"`
	Status        string      `gorm:"column:status;default:pending" json:"status"`
	IsPaid        bool        `gorm:"column:is_paid;default:false" json:"is_paid"`
	PaidAt        *time.Time  `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"column:order_id;index" json:"order_id"`
	ProductID uint64 `gorm:"column:product_id;not null" json:"product_id"`
	Price     int64  `gorm:"column:price;not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
