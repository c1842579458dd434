package models

import "time"

type RetailSaleStatus string

const (
	RetailStatusCompleted         RetailSaleStatus = "completed"
	RetailStatusPartiallyReturned RetailSaleStatus = "partially_returned"
	RetailStatusReturned          RetailSaleStatus = "returned"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// RetailSale - Perakende satış fişi. Tutarlar satış anında dondurulur,
// katalog fiyatı veya kur sonradan değişse de fiş değişmez.
type RetailSale struct {
	ID            uint          `gorm:"primaryKey"`
	SaleNo        string        `gorm:"size:20;uniqueIndex;not null"`
	PaymentMethod PaymentMethod `gorm:"size:10;not null"`

	Subtotal       float64          `gorm:"not null;default:0"` // Satır toplamlarının toplamı (TRY)
	DiscountAmount float64          `gorm:"not null;default:0"` // Fiş bazında düz indirim (TRY)
	Total          float64          `gorm:"not null;default:0"` // max(0, Subtotal - DiscountAmount)
	Status         RetailSaleStatus `gorm:"size:20;not null;default:'completed';index"`

	CreatedByID uint `gorm:"index"`
	CreatedBy   User `gorm:"foreignKey:CreatedByID"`

	Items []RetailSaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// RetailSaleItem - Fiş satırı. Birim fiyat, para birimi, kur ve TRY karşılığı
// satış anında sabitlenir (sonradan hesaplanmaz).
type RetailSaleItem struct {
	ID     uint `gorm:"primaryKey"`
	SaleID uint `gorm:"index;not null"`

	ProductID   uint  `gorm:"index;not null"`
	VariationID *uint `gorm:"index"`

	// Denormalize: ürün silinse de fişte isim kalır
	ProductName    string `gorm:"size:150;not null"`
	VariationLabel string `gorm:"size:100"`
	PriceMode      int    `gorm:"not null;default:1"` // 1 = Fiyat 1, 2 = Fiyat 2

	Quantity     int      `gorm:"not null"`
	UnitPrice    float64  `gorm:"not null"` // Orijinal para biriminde
	Currency     Currency `gorm:"size:3;not null"`
	ExchangeRate float64  `gorm:"not null;default:0"` // Satış anındaki kur (TRY ise 1)
	UnitPriceTRY float64  `gorm:"not null"`
	LineTotalTRY float64  `gorm:"not null"` // round(UnitPriceTRY * Quantity, 2)

	ReturnedQuantity int `gorm:"not null;default:0"` // 0 <= ReturnedQuantity <= Quantity

	CreatedAt time.Time
	UpdatedAt time.Time
}
