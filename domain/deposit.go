package domain

import "time"

const (
	DepositPending   = "pending"
	DepositCompleted = "completed"
	DepositFailed    = "failed"
)

// PendingDeposit is a wallet top-up intent awaiting bank-transfer
// confirmation from the payment gateway. TransferContent is the unique
// string the user puts in their transfer note; it is the sole key used
// to match an incoming webhook back to the deposit.
type PendingDeposit struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Amount          int64     `gorm:"column:amount;not null" json:"amount"`
	OrderCode       int64     `gorm:"column:order_code;unique;not null" json:"order_code"`
	TransferContent string    `gorm:"column:transfer_content;unique;not null" json:"transfer_content"`
	Status          string    `gorm:"column:status;default:pending" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (PendingDeposit) TableName() string {
	return "pending_deposits"
}

// DepositIntent is what the deposit endpoint returns to the client:
// everything needed to render the QR / checkout page.
type DepositIntent struct {
	ID              uint   `json:"id"`
	Amount          int64  `json:"amount"`
	OrderCode       int64  `json:"order_code"`
	TransferContent string `json:"transfer_content"`
	Status          string `json:"status"`
	CheckoutURL     string `json:"checkout_url"`
	QRCode          string `json:"qr_code,omitempty"`
}
