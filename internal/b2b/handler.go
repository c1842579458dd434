package b2b

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

type OrderItem struct {
	ProductID   uint  `json:"product_id"`
	VariationID *uint `json:"variation_id"`
	PriceMode   int   `json:"price_mode"`

	Quantity int `json:"quantity"`

	// Satış anında dondurulan değerler (bkz. perakende sepeti)
	UnitPrice    float64 `json:"unit_price"`
	Currency     string  `json:"currency"`
	ExchangeRate float64 `json:"exchange_rate"`
}

type CreateOrderRequest struct {
	FirmID         uint        `json:"firm_id"`
	Note           string      `json:"note"`
	DiscountAmount float64     `json:"discount_amount"`
	Items          []OrderItem `json:"items"`
}

type UpdateOrderRequest struct {
	Action string `json:"action"` // mark_processed / unmark_processed / full_return / partial_return / swap / update_note

	// partial_return ve swap için
	ItemID         uint `json:"item_id"`
	ReturnQuantity int  `json:"return_quantity"`

	// swap için: iade karşılığı verilen ürün
	SwapProductID   uint   `json:"swap_product_id"`
	SwapVariationID *uint  `json:"swap_variation_id"`
	SwapQuantity    int    `json:"swap_quantity"`
	SwapUnitPrice   float64 `json:"swap_unit_price"`
	SwapCurrency     string  `json:"swap_currency"`
	SwapExchangeRate float64 `json:"swap_exchange_rate"`
	SwapNote         string  `json:"swap_note"`

	// update_note için
	Note *string `json:"note"`
}

type OrderItemResponse struct {
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
	IsSwap           bool    `json:"is_swap"`
	SwapSourceItemID *uint   `json:"swap_source_item_id"`
	SwapNote         string  `json:"swap_note,omitempty"`
}

type OrderResponse struct {
	ID             uint                `json:"id"`
	SaleNo         string              `json:"sale_no"`
	FirmID         uint                `json:"firm_id"`
	FirmName       string              `json:"firm_name,omitempty"`
	Status         string              `json:"status"`
	IsProcessed    bool                `json:"is_processed"`
	Note           string              `json:"note"`
	Subtotal       float64             `json:"subtotal"`
	DiscountAmount float64             `json:"discount_amount"`
	Total          float64             `json:"total"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      string              `json:"created_at"`
}

func toOrderResponse(sale *models.B2BSale) OrderResponse {
	resp := OrderResponse{
		ID:             sale.ID,
		SaleNo:         sale.SaleNo,
		FirmID:         sale.FirmID,
		FirmName:       sale.Firm.Name,
		Status:         string(sale.Status),
		IsProcessed:    sale.IsProcessed,
		Note:           sale.Note,
		Subtotal:       sale.Subtotal,
		DiscountAmount: sale.DiscountAmount,
		Total:          sale.Total,
		Items:          make([]OrderItemResponse, 0, len(sale.Items)),
		CreatedAt:      sale.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for i := range sale.Items {
		it := &sale.Items[i]
		resp.Items = append(resp.Items, OrderItemResponse{
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
			IsSwap:           it.IsSwap,
			SwapSourceItemID: it.SwapSourceItemID,
			SwapNote:         it.SwapNote,
		})
	}
	return resp
}

func newSaleNo() string {
	return "BS-" + strings.ToUpper(uuid.NewString()[:8])
}

// frozenItem - Sipariş satırını doğrulayıp dondurur (perakende ile aynı
// sözleşme: TRY karşılığı ve satır toplamı burada sabitlenir).
func frozenItem(oi OrderItem) (models.B2BSaleItem, error) {
	var zero models.B2BSaleItem

	if oi.Quantity <= 0 {
		return zero, fiber.NewError(fiber.StatusBadRequest, "Adet 0'dan büyük olmalı")
	}
	if oi.UnitPrice < 0 {
		return zero, fiber.NewError(fiber.StatusBadRequest, "Birim fiyat negatif olamaz")
	}

	currency := models.Currency(oi.Currency)
	if currency == "" {
		currency = models.CurrencyTRY
	}
	if currency != models.CurrencyTRY && currency != models.CurrencyUSD && currency != models.CurrencyEUR {
		return zero, fiber.NewError(fiber.StatusBadRequest, "Para birimi TRY, USD veya EUR olmalı")
	}

	rate := oi.ExchangeRate
	if currency == models.CurrencyTRY {
		rate = 1
	}
	if rate <= 0 {
		return zero, fiber.NewError(fiber.StatusBadRequest, "Döviz kurları girilmeden döviz ürünü satılamaz")
	}

	var product models.Product
	if err := database.DB.First(&product, oi.ProductID).Error; err != nil {
		return zero, fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
	}

	variationLabel := ""
	if oi.VariationID != nil {
		var variation models.ProductVariation
		if err := database.DB.Where("id = ? AND product_id = ?", *oi.VariationID, product.ID).
			First(&variation).Error; err != nil {
			return zero, fiber.NewError(fiber.StatusBadRequest, "Varyasyon bulunamadı")
		}
		variationLabel = variation.Label
	}

	priceMode := oi.PriceMode
	if priceMode != 2 {
		priceMode = 1
	}

	unitPriceTRY := oi.UnitPrice * rate

	return models.B2BSaleItem{
		ProductID:      oi.ProductID,
		VariationID:    oi.VariationID,
		ProductName:    product.Name,
		VariationLabel: variationLabel,
		PriceMode:      priceMode,
		Quantity:       oi.Quantity,
		UnitPrice:      oi.UnitPrice,
		Currency:       currency,
		ExchangeRate:   rate,
		UnitPriceTRY:   unitPriceTRY,
		LineTotalTRY:   pricing.Round2(unitPriceTRY * float64(oi.Quantity)),
	}, nil
}

// -------------------------
// Create / List / Get
// -------------------------

// POST /api/b2b-sales
// Kilitli firmaya yeni sipariş açılamaz; mevcut kayıtlar okunabilir.
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.FirmID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "firm_id zorunlu")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş satırı yok")
		}
		if body.DiscountAmount < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İndirim tutarı negatif olamaz")
		}

		var firm models.Firm
		if err := database.DB.First(&firm, body.FirmID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
		}
		if firm.IsLocked {
			msg := "Firma kilitli, yeni sipariş açılamaz"
			if firm.LockReason != "" {
				msg += ": " + firm.LockReason
			}
			return fiber.NewError(fiber.StatusForbidden, msg)
		}

		userID, userName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		items := make([]models.B2BSaleItem, 0, len(body.Items))
		subtotal := 0.0
		for _, oi := range body.Items {
			item, err := frozenItem(oi)
			if err != nil {
				return err
			}
			items = append(items, item)
			subtotal += item.LineTotalTRY
		}
		subtotal = pricing.Round2(subtotal)

		total := pricing.Round2(subtotal - body.DiscountAmount)
		if total < 0 {
			total = 0
		}

		sale := models.B2BSale{
			SaleNo:         newSaleNo(),
			FirmID:         firm.ID,
			Status:         models.B2BStatusActive,
			Note:           body.Note,
			Subtotal:       subtotal,
			DiscountAmount: body.DiscountAmount,
			Total:          total,
			CreatedByID:    userID,
		}

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
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş kaydedilemedi")
		}
		sale.Items = items
		sale.Firm = firm

		_ = audit.WriteLog(audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "b2b_sale", EntityID: sale.ID,
			Action:      models.AuditActionCreate,
			Description: "B2B sipariş: " + sale.SaleNo + " (" + firm.Name + ")",
			After:       sale,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sale": toOrderResponse(&sale)})
	}
}

// GET /api/b2b-sales
// Query: firm_id, status, is_processed
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.B2BSale{}).Preload("Items").Preload("Firm").
			Order("created_at desc")

		if fid := c.QueryInt("firm_id"); fid > 0 {
			q = q.Where("firm_id = ?", fid)
		}
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if processed := c.Query("is_processed"); processed != "" {
			q = q.Where("is_processed = ?", processed == "true")
		}

		var sales []models.B2BSale
		if err := q.Limit(200).Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(sales))
		for i := range sales {
			resp = append(resp, toOrderResponse(&sales[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/b2b-sales/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}

		var sale models.B2BSale
		if err := database.DB.Preload("Items").Preload("Firm").First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}
		return c.JSON(fiber.Map{"sale": toOrderResponse(&sale)})
	}
}

// -------------------------
// Mutasyonlar
// -------------------------

// PUT /api/b2b-sales/:id  (sadece admin)
// Body: {action: "mark_processed" | "unmark_processed" | "full_return" |
//        "partial_return" | "swap" | "update_note", ...}
func UpdateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}

		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var sale models.B2BSale
		if err := database.DB.Preload("Items").Preload("Firm").First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		userID, userName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		auditAction := models.AuditActionUpdate
		switch body.Action {
		case "mark_processed":
			err = setProcessed(&sale, true)
		case "unmark_processed":
			err = setProcessed(&sale, false)
		case "full_return":
			auditAction = models.AuditActionReturn
			err = applyFullReturn(&sale)
		case "partial_return":
			auditAction = models.AuditActionReturn
			err = applyPartialReturn(&sale, body.ItemID, body.ReturnQuantity)
		case "swap":
			auditAction = models.AuditActionSwap
			err = applySwap(&sale, &body)
		case "update_note":
			if body.Note == nil {
				return fiber.NewError(fiber.StatusBadRequest, "note zorunlu")
			}
			err = updateNote(&sale, *body.Note)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Bilinmeyen işlem: "+body.Action)
		}
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "b2b_sale", EntityID: sale.ID,
			Action:      auditAction,
			Description: "B2B " + body.Action + ": " + sale.SaleNo,
			After:       sale,
		})

		return c.JSON(fiber.Map{"sale": toOrderResponse(&sale)})
	}
}

// setProcessed - "İşlendi" işareti iade durumundan bağımsızdır, her durumda
// açılıp kapatılabilir.
func setProcessed(sale *models.B2BSale, processed bool) error {
	sale.IsProcessed = processed
	if err := database.DB.Model(&models.B2BSale{}).Where("id = ?", sale.ID).
		Update("is_processed", processed).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Sipariş güncellenemedi")
	}
	return nil
}

func updateNote(sale *models.B2BSale, note string) error {
	sale.Note = note
	if err := database.DB.Model(&models.B2BSale{}).Where("id = ?", sale.ID).
		Update("note", note).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Not güncellenemedi")
	}
	return nil
}

// applyPartialReturn - Tek satıra iade. Kalan adedi aşan istek hiçbir
// değişiklik yapılmadan reddedilir; swap satırı iade edilemez. Satır
// güncellemesi + durum hesabı tek transaction.
func applyPartialReturn(sale *models.B2BSale, itemID uint, returnQty int) error {
	if itemID == 0 || returnQty <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "item_id ve pozitif return_quantity zorunlu")
	}

	var target *models.B2BSaleItem
	for i := range sale.Items {
		if sale.Items[i].ID == itemID {
			target = &sale.Items[i]
			break
		}
	}
	if target == nil {
		return fiber.NewError(fiber.StatusNotFound, "Sipariş satırı bulunamadı")
	}
	if target.IsSwap {
		return fiber.NewError(fiber.StatusBadRequest, "Değişim satırı iade edilemez")
	}

	remaining := target.Quantity - target.ReturnedQuantity
	if returnQty > remaining {
		return fiber.NewError(fiber.StatusBadRequest, "İade adedi kalan adedi aşıyor")
	}

	target.ReturnedQuantity += returnQty
	sale.Status = DeriveStatus(sale.Items)

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.B2BSaleItem{}).Where("id = ?", target.ID).
			Update("returned_quantity", target.ReturnedQuantity).Error; err != nil {
			return err
		}
		return tx.Model(&models.B2BSale{}).Where("id = ?", sale.ID).
			Update("status", sale.Status).Error
	})
	if txErr != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "İade kaydedilemedi")
	}
	return nil
}

// applyFullReturn - Swap olmayan tüm satırları tek işlemde tam iadeye çeker;
// durum koşulsuz "returned" olur.
func applyFullReturn(sale *models.B2BSale) error {
	for i := range sale.Items {
		if sale.Items[i].IsSwap {
			continue
		}
		sale.Items[i].ReturnedQuantity = sale.Items[i].Quantity
	}
	sale.Status = models.B2BStatusReturned

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.B2BSaleItem{}).
			Where("sale_id = ? AND is_swap = ?", sale.ID, false).
			Update("returned_quantity", gorm.Expr("quantity")).Error; err != nil {
			return err
		}
		return tx.Model(&models.B2BSale{}).Where("id = ?", sale.ID).
			Update("status", sale.Status).Error
	})
	if txErr != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "İade kaydedilemedi")
	}
	return nil
}

// applySwap - İade + değişim tek işlem: kaynak satıra doğrulanmış kısmi iade
// işlenir, karşılığında is_swap işaretli yeni satır eklenir. Yeni satır
// kaynak satıra referans taşır ve durum taramasına girmez.
func applySwap(sale *models.B2BSale, body *UpdateOrderRequest) error {
	if body.ItemID == 0 || body.ReturnQuantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "item_id ve pozitif return_quantity zorunlu")
	}
	if body.SwapProductID == 0 || body.SwapQuantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "swap_product_id ve pozitif swap_quantity zorunlu")
	}

	var target *models.B2BSaleItem
	for i := range sale.Items {
		if sale.Items[i].ID == body.ItemID {
			target = &sale.Items[i]
			break
		}
	}
	if target == nil {
		return fiber.NewError(fiber.StatusNotFound, "Sipariş satırı bulunamadı")
	}
	if target.IsSwap {
		return fiber.NewError(fiber.StatusBadRequest, "Değişim satırı iade edilemez")
	}

	remaining := target.Quantity - target.ReturnedQuantity
	if body.ReturnQuantity > remaining {
		return fiber.NewError(fiber.StatusBadRequest, "İade adedi kalan adedi aşıyor")
	}

	swapItem, err := frozenItem(OrderItem{
		ProductID:    body.SwapProductID,
		VariationID:  body.SwapVariationID,
		Quantity:     body.SwapQuantity,
		UnitPrice:    body.SwapUnitPrice,
		Currency:     body.SwapCurrency,
		ExchangeRate: body.SwapExchangeRate,
	})
	if err != nil {
		return err
	}
	srcID := target.ID
	swapItem.SaleID = sale.ID
	swapItem.IsSwap = true
	swapItem.SwapSourceItemID = &srcID
	swapItem.SwapNote = body.SwapNote

	target.ReturnedQuantity += body.ReturnQuantity
	sale.Items = append(sale.Items, swapItem)
	sale.Status = DeriveStatus(sale.Items)

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.B2BSaleItem{}).Where("id = ?", target.ID).
			Update("returned_quantity", target.ReturnedQuantity).Error; err != nil {
			return err
		}
		if err := tx.Create(&swapItem).Error; err != nil {
			return err
		}
		return tx.Model(&models.B2BSale{}).Where("id = ?", sale.ID).
			Update("status", sale.Status).Error
	})
	if txErr != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Değişim kaydedilemedi")
	}

	sale.Items[len(sale.Items)-1] = swapItem
	return nil
}

// -------------------------
// Tarih filtresi yardımcıları (rapor ekranı)
// -------------------------

// GET /api/b2b-sales/summary
// Query: from, to. Firma bazında sipariş adedi ve toplam tutar döner.
func OrderSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type row struct {
			FirmID    uint    `json:"firm_id"`
			FirmName  string  `json:"firm_name"`
			SaleCount int64   `json:"sale_count"`
			Total     float64 `json:"total"`
		}

		q := database.DB.Model(&models.B2BSale{}).
			Select("b2b_sales.firm_id, firms.name AS firm_name, COUNT(b2b_sales.id) AS sale_count, SUM(b2b_sales.total) AS total").
			Joins("JOIN firms ON firms.id = b2b_sales.firm_id").
			Group("b2b_sales.firm_id, firms.name")

		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi 'YYYY-MM-DD' formatında olmalı")
			}
			q = q.Where("b2b_sales.created_at >= ?", t)
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi 'YYYY-MM-DD' formatında olmalı")
			}
			q = q.Where("b2b_sales.created_at < ?", t.AddDate(0, 0, 1))
		}

		var rows []row
		if err := q.Order("total desc").Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		return c.JSON(rows)
	}
}
