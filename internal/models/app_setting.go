package models

import "time"

// AppSetting - Anahtar/değer tabanlı uygulama ayarları.
// "currency_rates" anahtarı {"usd_try": N, "eur_try": N} JSON'u tutar.
type AppSetting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"size:50;uniqueIndex;not null"`
	Value     string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

const SettingKeyCurrencyRates = "currency_rates"
