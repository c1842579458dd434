package models

import "time"

// Firm - B2B müşteri firması. Kilitli firma yeni sipariş açamaz,
// mevcut kayıtları okunabilir.
type Firm struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;unique"`
	ContactName string `gorm:"size:100"`
	Phone       string `gorm:"size:30"`
	Email       string `gorm:"size:100"`
	Address     string `gorm:"size:255"`
	TaxNumber   string `gorm:"size:30"`
	IsLocked    bool   `gorm:"not null;default:false"`
	LockReason  string `gorm:"size:255"`
	Note        string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
