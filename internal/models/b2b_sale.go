package models

import "time"

type B2BSaleStatus string

const (
	B2BStatusActive            B2BSaleStatus = "active"
	B2BStatusPartiallyReturned B2BSaleStatus = "partially_returned"
	B2BStatusReturned          B2BSaleStatus = "returned"
)

// B2BSale - Firma siparişi. Status iade durumundan türetilir; IsProcessed
// bundan bağımsız idari "işlendi" işaretidir.
type B2BSale struct {
	ID     uint   `gorm:"primaryKey"`
	SaleNo string `gorm:"size:20;uniqueIndex;not null"`
	FirmID uint   `gorm:"index;not null"`
	Firm   Firm

	Status      B2BSaleStatus `gorm:"size:20;not null;default:'active';index"`
	IsProcessed bool          `gorm:"not null;default:false;index"`
	Note        string        `gorm:"size:500"`

	Subtotal       float64 `gorm:"not null;default:0"`
	DiscountAmount float64 `gorm:"not null;default:0"`
	Total          float64 `gorm:"not null;default:0"`

	CreatedByID uint `gorm:"index"`
	CreatedBy   User `gorm:"foreignKey:CreatedByID"`

	Items []B2BSaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// B2BSaleItem - Sipariş satırı. IsSwap true ise bu satır bir iade karşılığı
// verilen değişim ürünüdür; SwapSourceItemID iade edilen satırı gösterir
// (sahiplik değil, referans). Swap satırları iade edilemez ve durum
// taramasına girmez.
type B2BSaleItem struct {
	ID     uint `gorm:"primaryKey"`
	SaleID uint `gorm:"index;not null"`

	ProductID   uint  `gorm:"index;not null"`
	VariationID *uint `gorm:"index"`

	ProductName    string `gorm:"size:150;not null"`
	VariationLabel string `gorm:"size:100"`
	PriceMode      int    `gorm:"not null;default:1"`

	Quantity     int      `gorm:"not null"`
	UnitPrice    float64  `gorm:"not null"`
	Currency     Currency `gorm:"size:3;not null"`
	ExchangeRate float64  `gorm:"not null;default:0"`
	UnitPriceTRY float64  `gorm:"not null"`
	LineTotalTRY float64  `gorm:"not null"`

	ReturnedQuantity int `gorm:"not null;default:0"`

	IsSwap           bool   `gorm:"not null;default:false"`
	SwapSourceItemID *uint  `gorm:"index"`
	SwapNote         string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
