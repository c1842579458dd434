package settings

import (
	"encoding/json"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/pricing"

	"gorm.io/gorm"
)

// currencyRatesValue - currency_rates ayar satırının JSON gövdesi.
type currencyRatesValue struct {
	USDTRY float64 `json:"usd_try"`
	EURTRY float64 `json:"eur_try"`
}

// LoadCurrencyRates - Ayarlardan kurları tipli olarak okur. Kayıt yoksa veya
// JSON bozuksa sıfır kurlar döner (0 = kur girilmemiş); fiyat hesabı bunu
// "TRY karşılığı hesaplanamıyor" olarak işler, hata üretmez.
func LoadCurrencyRates(db *gorm.DB) pricing.CurrencyRates {
	var setting models.AppSetting
	if err := db.Where("key = ?", models.SettingKeyCurrencyRates).First(&setting).Error; err != nil {
		return pricing.CurrencyRates{}
	}

	var v currencyRatesValue
	if err := json.Unmarshal([]byte(setting.Value), &v); err != nil {
		return pricing.CurrencyRates{}
	}

	return pricing.CurrencyRates{USDToTRY: v.USDTRY, EURToTRY: v.EURTRY}
}

// SaveCurrencyRates - Kurları currency_rates satırına yazar.
func SaveCurrencyRates(db *gorm.DB, rates pricing.CurrencyRates) error {
	raw, err := json.Marshal(currencyRatesValue{USDTRY: rates.USDToTRY, EURTRY: rates.EURToTRY})
	if err != nil {
		return err
	}

	var setting models.AppSetting
	if err := db.Where("key = ?", models.SettingKeyCurrencyRates).First(&setting).Error; err != nil {
		setting = models.AppSetting{Key: models.SettingKeyCurrencyRates, Value: string(raw)}
		return db.Create(&setting).Error
	}

	setting.Value = string(raw)
	return db.Save(&setting).Error
}
