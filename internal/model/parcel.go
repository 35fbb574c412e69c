package model

import "time"

type ParcelSize string

const (
	ParcelSizeDocument ParcelSize = "document"
	ParcelSizeSmall    ParcelSize = "small"
	ParcelSizeMedium   ParcelSize = "medium"
	ParcelSizeLarge    ParcelSize = "large"
)

func ParseParcelSize(s string) (ParcelSize, bool) {
	switch ParcelSize(s) {
	case ParcelSizeDocument, ParcelSizeSmall, ParcelSizeMedium, ParcelSizeLarge:
		return ParcelSize(s), true
	}
	return "", false
}

// DefaultFee returns the flat delivery fee in ETB for a size class.
func (s ParcelSize) DefaultFee() float64 {
	switch s {
	case ParcelSizeDocument:
		return 80
	case ParcelSizeSmall:
		return 120
	case ParcelSizeMedium:
		return 150
	case ParcelSizeLarge:
		return 220
	}
	return 0
}

// deliveryOffset is the fixed estimated-delivery window per size class.
// This is a display estimate, not a routing computation.
func (s ParcelSize) deliveryOffset() time.Duration {
	switch s {
	case ParcelSizeDocument:
		return 24 * time.Hour
	case ParcelSizeSmall:
		return 48 * time.Hour
	case ParcelSizeLarge:
		return 96 * time.Hour
	default:
		return 72 * time.Hour
	}
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodWallet   PaymentMethod = "wallet"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodYenePay  PaymentMethod = "yenepay"
	PaymentMethodTeleBirr PaymentMethod = "telebirr"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodWallet, PaymentMethodCash, PaymentMethodYenePay, PaymentMethodTeleBirr:
		return PaymentMethod(s), true
	}
	return "", false
}

type Parcel struct {
	ID               string        `gorm:"type:char(36);primaryKey"`
	TrackingCode     string        `gorm:"column:tracking_code;size:32;uniqueIndex;not null"`
	SenderUID        string        `gorm:"column:sender_uid;size:128;index;not null"`
	ReceiverUID      *string       `gorm:"column:receiver_uid;size:128;index"`
	PickupAddressID  string        `gorm:"column:pickup_address_id;type:char(36);not null"`
	DropoffAddressID string        `gorm:"column:dropoff_address_id;type:char(36);not null"`
	Status           ParcelStatus  `gorm:"column:status;size:32;index;not null"`
	Size             ParcelSize    `gorm:"column:size;size:16;not null"`
	Description      string        `gorm:"column:description;type:text"`
	Fragile          bool          `gorm:"column:fragile"`
	WeightKG         *float64      `gorm:"column:weight_kg"`
	FeeETB           float64       `gorm:"column:fee_etb"`
	PaymentStatus    PaymentStatus `gorm:"column:payment_status;size:16;not null"`
	PaymentMethod    PaymentMethod `gorm:"column:payment_method;size:16;not null"`
	CreatedAt        time.Time     `gorm:"autoCreateTime"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime"`
}

func (Parcel) TableName() string {
	return "parcels"
}

// EstimatedDelivery is derived from creation time and size class; it is
// never persisted.
func (p *Parcel) EstimatedDelivery() time.Time {
	return p.CreatedAt.Add(p.Size.deliveryOffset())
}
