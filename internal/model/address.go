package model

import "time"

// Address is immutable once a parcel references it; corrections create a
// new row instead of editing in place.
type Address struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	OwnerUID   string    `gorm:"column:owner_uid;size:128;index;not null"`
	Line       string    `gorm:"column:line;size:255;not null"`
	City       string    `gorm:"column:city;size:120;not null"`
	PostalCode *string   `gorm:"column:postal_code;size:20"`
	Latitude   *float64  `gorm:"column:latitude"`
	Longitude  *float64  `gorm:"column:longitude"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Address) TableName() string {
	return "addresses"
}
