package retail

import (
	"strings"
	"time"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/audit"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type CheckoutItem struct {
	ProductID   uint   `json:"product_id"`
	VariationID *uint  `json:"variation_id"`
	PriceMode   int    `json:"price_mode"` // 1 veya 2

	Quantity int `json:"quantity"`

	// Sepete eklenme anında dondurulan değerler: birim fiyat orijinal para
	// biriminde, kur o anki ayarlardan. Satış sonrası katalog/kur değişse
	// de fiş değişmez.
	UnitPrice    float64 `json:"unit_price"`
	Currency     string  `json:"currency"`
	ExchangeRate float64 `json:"exchange_rate"`
}

type CheckoutRequest struct {
	PaymentMethod  string         `json:"payment_method"` // cash / card
	DiscountAmount float64        `json:"discount_amount"`
	Items          []CheckoutItem `json:"items"`
}

type UpdateSaleRequest struct {
	Action string `json:"action"` // full_return / partial_return / update_discount

	// partial_return için
	ItemID         uint `json:"item_id"`
	ReturnQuantity int  `json:"return_quantity"`

	// update_discount için
	DiscountAmount *float64 `json:"discount_amount"`
}

type SaleItemResponse struct {
	ID               uint    `json:"id"`
	ProductID        uint    `json:"product_id"`
	VariationID      *uint   `json:"variation_id"`
	ProductName      string  `json:"product_name"`
	VariationLabel   string  `json:"variation_label"`
	PriceMode        int     `json:"price_mode"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	Currency         string  `json:"currency"`
	ExchangeRate     float64 `json:"exchange_rate"`
	UnitPriceTRY     float64 `json:"unit_price_try"`
	LineTotalTRY     float64 `json:"line_total_try"`
	ReturnedQuantity int     `json:"returned_quantity"`
}

type SaleResponse struct {
	ID             uint               `json:"id"`
	SaleNo         string             `json:"sale_no"`
	PaymentMethod  string             `json:"payment_method"`
	Status         string             `json:"status"`
	Subtotal       float64            `json:"subtotal"`
	DiscountAmount float64            `json:"discount_amount"`
	Total          float64            `json:"total"`
	Items          []SaleItemResponse `json:"items"`
	CreatedAt      string             `json:"created_at"`
}

func toSaleResponse(sale *models.RetailSale) SaleResponse {
	resp := SaleResponse{
		ID:             sale.ID,
		SaleNo:         sale.SaleNo,
		PaymentMethod:  string(sale.PaymentMethod),
		Status:         string(sale.Status),
		Subtotal:       sale.Subtotal,
		DiscountAmount: sale.DiscountAmount,
		Total:          sale.Total,
		Items:          make([]SaleItemResponse, 0, len(sale.Items)),
		CreatedAt:      sale.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for i := range sale.Items {
		it := &sale.Items[i]
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			VariationID:      it.VariationID,
			ProductName:      it.ProductName,
			VariationLabel:   it.VariationLabel,
			PriceMode:        it.PriceMode,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			Currency:         string(it.Currency),
			ExchangeRate:     it.ExchangeRate,
			UnitPriceTRY:     it.UnitPriceTRY,
			LineTotalTRY:     it.LineTotalTRY,
			ReturnedQuantity: it.ReturnedQuantity,
		})
	}
	return resp
}

func newSaleNo() string {
	return "PF-" + strings.ToUpper(uuid.NewString()[:8])
}

// -------------------------
// Checkout
// -------------------------

// POST /api/sales
// Sepet satırları satış anında dondurulur: birim fiyat, para birimi, kur ve
// TRY karşılığı fişe yazılır, sonradan katalogdan yeniden hesaplanmaz.
func CheckoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sepet boş")
		}
		method := models.PaymentMethod(body.PaymentMethod)
		if method != models.PaymentCash && method != models.PaymentCard {
			return fiber.NewError(fiber.StatusBadRequest, "Ödeme yöntemi 'cash' veya 'card' olmalı")
		}
		if body.DiscountAmount < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İndirim tutarı negatif olamaz")
		}

		userID, userName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		sale := models.RetailSale{
			SaleNo:         newSaleNo(),
			PaymentMethod:  method,
			DiscountAmount: body.DiscountAmount,
			Status:         models.RetailStatusCompleted,
			CreatedByID:    userID,
		}

		items, subtotal, err := freezeItems(body.Items)
		if err != nil {
			return err
		}
		sale.Subtotal = subtotal
		sale.Total = saleTotal(subtotal, body.DiscountAmount)

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].SaleID = sale.ID
				if err := tx.Create(&items[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydedilemedi")
		}
		sale.Items = items

		_ = audit.WriteLog(audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "retail_sale", EntityID: sale.ID,
			Action:      models.AuditActionCreate,
			Description: "Perakende satış: " + sale.SaleNo,
			After:       sale,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sale": toSaleResponse(&sale)})
	}
}

// freezeItems - Sepet satırlarını doğrular ve dondurulmuş fiş satırlarına
// çevirir. Satır toplamı kuruşa yuvarlanır, ara toplam yuvarlanmış satır
// toplamlarının toplamıdır.
func freezeItems(payload []CheckoutItem) ([]models.RetailSaleItem, float64, error) {
	items := make([]models.RetailSaleItem, 0, len(payload))
	subtotal := 0.0

	for _, ci := range payload {
		if ci.Quantity <= 0 {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Adet 0'dan büyük olmalı")
		}
		if ci.UnitPrice < 0 {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Birim fiyat negatif olamaz")
		}

		currency := models.Currency(ci.Currency)
		if currency == "" {
			currency = models.CurrencyTRY
		}
		if currency != models.CurrencyTRY && currency != models.CurrencyUSD && currency != models.CurrencyEUR {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Para birimi TRY, USD veya EUR olmalı")
		}

		rate := ci.ExchangeRate
		if currency == models.CurrencyTRY {
			rate = 1
		}
		if rate <= 0 {
			// Kur girilmeden döviz ürünü satılamaz; 0 kurla çarparak
			// 0 TL fiş kesilmesine izin verilmez
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Döviz kurları girilmeden döviz ürünü satılamaz")
		}

		var product models.Product
		if err := database.DB.First(&product, ci.ProductID).Error; err != nil {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		variationLabel := ""
		if ci.VariationID != nil {
			var variation models.ProductVariation
			if err := database.DB.Where("id = ? AND product_id = ?", *ci.VariationID, product.ID).
				First(&variation).Error; err != nil {
				return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Varyasyon bulunamadı")
			}
			variationLabel = variation.Label
		}

		priceMode := ci.PriceMode
		if priceMode != 2 {
			priceMode = 1
		}

		unitPriceTRY := ci.UnitPrice * rate
		lineTotal := pricing.Round2(unitPriceTRY * float64(ci.Quantity))

		items = append(items, models.RetailSaleItem{
			ProductID:        ci.ProductID,
			VariationID:      ci.VariationID,
			ProductName:      product.Name,
			VariationLabel:   variationLabel,
			PriceMode:        priceMode,
			Quantity:         ci.Quantity,
			UnitPrice:        ci.UnitPrice,
			Currency:         currency,
			ExchangeRate:     rate,
			UnitPriceTRY:     unitPriceTRY,
			LineTotalTRY:     lineTotal,
			ReturnedQuantity: 0,
		})
		subtotal += lineTotal
	}

	return items, pricing.Round2(subtotal), nil
}

// saleTotal - Fiş toplamı: ara toplam - düz indirim, asla negatif olmaz.
func saleTotal(subtotal, discount float64) float64 {
	total := pricing.Round2(subtotal - discount)
	if total < 0 {
		return 0
	}
	return total
}

// -------------------------
// List / Get
// -------------------------

// GET /api/sales
// Query: status, from, to ("2025-12-09")
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.RetailSale{}).Preload("Items").Order("created_at desc")

		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi 'YYYY-MM-DD' formatında olmalı")
			}
			q = q.Where("created_at >= ?", t)
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi 'YYYY-MM-DD' formatında olmalı")
			}
			q = q.Where("created_at < ?", t.AddDate(0, 0, 1))
		}

		var sales []models.RetailSale
		if err := q.Limit(200).Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		resp := make([]SaleResponse, 0, len(sales))
		for i := range sales {
			resp = append(resp, toSaleResponse(&sales[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış id")
		}

		var sale models.RetailSale
		if err := database.DB.Preload("Items").First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}
		return c.JSON(fiber.Map{"sale": toSaleResponse(&sale)})
	}
}

// -------------------------
// Mutasyonlar (iade / indirim)
// -------------------------

// PUT /api/sales/:id  (sadece admin)
// Body: {action: "full_return" | "partial_return" | "update_discount", ...}
func UpdateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış id")
		}

		var body UpdateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var sale models.RetailSale
		if err := database.DB.Preload("Items").First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		userID, userName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		switch body.Action {
		case "full_return":
			err = applyFullReturn(&sale)
		case "partial_return":
			err = applyPartialReturn(&sale, body.ItemID, body.ReturnQuantity)
		case "update_discount":
			if body.DiscountAmount == nil {
				return fiber.NewError(fiber.StatusBadRequest, "discount_amount zorunlu")
			}
			err = applyDiscountUpdate(&sale, *body.DiscountAmount)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Bilinmeyen işlem: "+body.Action)
		}
		if err != nil {
			return err
		}

		if body.Action != "update_discount" {
			_ = audit.WriteLog(audit.LogOptions{
				UserID: userID, UserName: userName,
				EntityType: "retail_sale", EntityID: sale.ID,
				Action:      models.AuditActionReturn,
				Description: "Perakende iade (" + body.Action + "): " + sale.SaleNo,
				After:       sale,
			})
		}

		return c.JSON(fiber.Map{"sale": toSaleResponse(&sale)})
	}
}

// applyPartialReturn - Tek satıra iade işler. İade edilen toplam, satır
// adedini aşacaksa hiçbir değişiklik yapılmadan reddedilir. Satır
// güncellemesi ve fiş durumunun yeniden hesabı tek transaction'dadır.
func applyPartialReturn(sale *models.RetailSale, itemID uint, returnQty int) error {
	if itemID == 0 || returnQty <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "item_id ve pozitif return_quantity zorunlu")
	}

	var target *models.RetailSaleItem
	for i := range sale.Items {
		if sale.Items[i].ID == itemID {
			target = &sale.Items[i]
			break
		}
	}
	if target == nil {
		return fiber.NewError(fiber.StatusNotFound, "Fiş satırı bulunamadı")
	}

	remaining := target.Quantity - target.ReturnedQuantity
	if returnQty > remaining {
		return fiber.NewError(fiber.StatusBadRequest, "İade adedi kalan adedi aşıyor")
	}

	target.ReturnedQuantity += returnQty
	sale.Status = DeriveStatus(sale.Items)

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RetailSaleItem{}).Where("id = ?", target.ID).
			Update("returned_quantity", target.ReturnedQuantity).Error; err != nil {
			return err
		}
		return tx.Model(&models.RetailSale{}).Where("id = ?", sale.ID).
			Update("status", sale.Status).Error
	})
	if txErr != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "İade kaydedilemedi")
	}
	return nil
}

// applyFullReturn - Tüm satırları tek işlemde tam iadeye çeker.
func applyFullReturn(sale *models.RetailSale) error {
	for i := range sale.Items {
		sale.Items[i].ReturnedQuantity = sale.Items[i].Quantity
	}
	sale.Status = models.RetailStatusReturned

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RetailSaleItem{}).Where("sale_id = ?", sale.ID).
			Update("returned_quantity", gorm.Expr("quantity")).Error; err != nil {
			return err
		}
		return tx.Model(&models.RetailSale{}).Where("id = ?", sale.ID).
			Update("status", sale.Status).Error
	})
	if txErr != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "İade kaydedilemedi")
	}
	return nil
}

func applyDiscountUpdate(sale *models.RetailSale, discount float64) error {
	if discount < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "İndirim tutarı negatif olamaz")
	}

	sale.DiscountAmount = discount
	sale.Total = saleTotal(sale.Subtotal, discount)

	if err := database.DB.Model(&models.RetailSale{}).Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"discount_amount": sale.DiscountAmount,
			"total":           sale.Total,
		}).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "İndirim güncellenemedi")
	}
	return nil
}
