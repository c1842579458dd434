package models

import "time"

// Note - Dükkan içi not/hatırlatma panosu kaydı.
type Note struct {
	ID         uint   `gorm:"primaryKey"`
	Content    string `gorm:"size:1000;not null"`
	Color      string `gorm:"size:20"` // Pano rengi ("yellow", "blue" vs.)
	IsDone     bool   `gorm:"not null;default:false"`
	ReminderAt *time.Time
	CreatedByID uint `gorm:"index"`
	CreatedBy   User `gorm:"foreignKey:CreatedByID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
