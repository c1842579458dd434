package database

import (
	"log"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/config"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate - Tüm tabloları oluşturur ve zorunlu ayar kayıtlarını tohumlar.
// Testler bunu in-memory sqlite üzerinde de çağırır.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.AppSetting{},
		&models.Brand{},
		&models.Supplier{},
		&models.Firm{},
		&models.Product{},
		&models.VariationGroup{},
		&models.ProductVariation{},
		&models.ProductSupplier{},
		&models.ProductSpecImage{},
		&models.RetailSale{},
		&models.RetailSaleItem{},
		&models.B2BSale{},
		&models.B2BSaleItem{},
		&models.Note{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	// currency_rates kaydı yoksa sıfır kurlarla oluştur (kur 0 = "kur girilmemiş")
	var count int64
	db.Model(&models.AppSetting{}).Where("key = ?", models.SettingKeyCurrencyRates).Count(&count)
	if count == 0 {
		seed := models.AppSetting{
			Key:   models.SettingKeyCurrencyRates,
			Value: `{"usd_try":0,"eur_try":0}`,
		}
		if err := db.Create(&seed).Error; err != nil {
			return err
		}
		log.Println("currency_rates ayarı oluşturuldu (kurlar 0, ayarlardan girilmeli)")
	}

	return nil
}
