package models

import "time"

type Supplier struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;unique"`
	ContactName string `gorm:"size:100"`
	Phone       string `gorm:"size:30"`
	Email       string `gorm:"size:100"`
	Address     string `gorm:"size:255"`
	VadeDays    int    `gorm:"not null;default:0"` // Ödeme vadesi (gün)
	Note        string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
