package models

import "time"

type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Product - Katalog ürünü. Fiyat alanları liste fiyatı + iskonto + kâr + KDV
// şeklinde tutulur, satış fiyatı her zaman hesaplanır (pricing paketi).
// İkinci fiyat varyantı (Fiyat 2) opsiyoneldir.
type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null;index"`
	StockCode   string `gorm:"size:50;index"`
	BrandID     *uint  `gorm:"index"`
	Brand       *Brand
	Description string `gorm:"size:1000"`

	ListPrice       float64  `gorm:"not null;default:0"`
	DiscountPercent float64  `gorm:"not null;default:0"` // İskonto (0-100)
	KDVPercent      float64  `gorm:"not null;default:0"` // KDV oranı (10, 20 vs.)
	ProfitPercent   float64  `gorm:"not null;default:0"` // Kâr marjı
	Currency        Currency `gorm:"size:3;not null;default:'TRY'"`

	// Fiyat 2: aynı ürünün ikinci fiyat varyantı (ör. toptan fiyat)
	HasPrice2        bool    `gorm:"not null;default:false"`
	ListPrice2       float64 `gorm:"not null;default:0"`
	DiscountPercent2 float64 `gorm:"not null;default:0"`
	Price2Label      string  `gorm:"size:50"`

	IsActive bool `gorm:"not null;default:true;index"` // Soft delete

	Variations []ProductVariation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Suppliers  []ProductSupplier  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	SpecImages []ProductSpecImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VariationGroup - Varyasyon başlığı (Beden, Renk vs.)
type VariationGroup struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;not null;unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductVariation - Ürün varyasyonu. HasCustomPrice true ise kendi liste
// fiyatı/iskontosu geçerlidir; KDV ve kâr her zaman üründen gelir.
type ProductVariation struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	GroupID   *uint
	Group     *VariationGroup `gorm:"foreignKey:GroupID"`
	Label     string          `gorm:"size:100;not null"` // "42 Numara", "Kırmızı" vs.
	SKU       string          `gorm:"size:50;index"`

	HasCustomPrice   bool    `gorm:"not null;default:false"`
	ListPrice        float64 `gorm:"not null;default:0"`
	DiscountPercent  float64 `gorm:"not null;default:0"`
	ListPrice2       float64 `gorm:"not null;default:0"`
	DiscountPercent2 float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductSupplier - Ürün/tedarikçi bağlantısı.
type ProductSupplier struct {
	ID         uint `gorm:"primaryKey"`
	ProductID  uint `gorm:"index;not null"`
	SupplierID uint `gorm:"index;not null"`
	Supplier   Supplier
	Note       string `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductSpecImage - Ürün teknik/özellik görseli (diske kaydedilir).
type ProductSpecImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"index;not null"`
	FilePath  string `gorm:"size:255;not null"`
	SortOrder int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
