package model

import "time"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Transaction is the one-to-one payment companion of a parcel.
type Transaction struct {
	ID            string            `gorm:"type:char(36);primaryKey"`
	ParcelID      string            `gorm:"column:parcel_id;type:char(36);uniqueIndex;not null"`
	AmountETB     float64           `gorm:"column:amount_etb;not null"`
	Status        TransactionStatus `gorm:"column:status;size:16;not null"`
	PaymentMethod PaymentMethod     `gorm:"column:payment_method;size:16;not null"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
