package catalog

import (
	"strings"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/audit"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/pricing"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/settings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type VariationPayload struct {
	GroupID          *uint   `json:"group_id"`
	Label            string  `json:"label"`
	SKU              string  `json:"sku"`
	HasCustomPrice   bool    `json:"has_custom_price"`
	ListPrice        float64 `json:"list_price"`
	DiscountPercent  float64 `json:"discount_percent"`
	ListPrice2       float64 `json:"list_price2"`
	DiscountPercent2 float64 `json:"discount_percent2"`
}

type SupplierLinkPayload struct {
	SupplierID uint   `json:"supplier_id"`
	Note       string `json:"note"`
}

type ProductPayload struct {
	Name        string `json:"name"`
	StockCode   string `json:"stock_code"`
	BrandID     *uint  `json:"brand_id"`
	Description string `json:"description"`

	ListPrice       float64 `json:"list_price"`
	DiscountPercent float64 `json:"discount_percent"`
	KDVPercent      float64 `json:"kdv_percent"`
	ProfitPercent   float64 `json:"profit_percent"`
	Currency        string  `json:"currency"`

	HasPrice2        bool    `json:"has_price2"`
	ListPrice2       float64 `json:"list_price2"`
	DiscountPercent2 float64 `json:"discount_percent2"`
	Price2Label      string  `json:"price2_label"`

	Variations []VariationPayload    `json:"variations"`
	Suppliers  []SupplierLinkPayload `json:"suppliers"`
}

// PriceView - Hesaplanmış fiyatın API karşılığı. SalePriceTRY nil ise kur
// girilmemiştir, istemci "hesaplanamıyor" gösterir (0 TL değil).
type PriceView struct {
	BuyPrice     float64  `json:"buy_price"`
	SalePrice    float64  `json:"sale_price"`
	Currency     string   `json:"currency"`
	SalePriceTRY *float64 `json:"sale_price_try"`
}

type VariationView struct {
	ID             uint       `json:"id"`
	GroupID        *uint      `json:"group_id"`
	GroupName      string     `json:"group_name,omitempty"`
	Label          string     `json:"label"`
	SKU            string     `json:"sku"`
	HasCustomPrice bool       `json:"has_custom_price"`
	Price          PriceView  `json:"price"`
	Price2         *PriceView `json:"price2,omitempty"`
}

type SupplierLinkView struct {
	SupplierID   uint   `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	VadeDays     int    `json:"vade_days"`
	Note         string `json:"note"`
}

type SpecImageView struct {
	ID        uint   `json:"id"`
	FilePath  string `json:"file_path"`
	SortOrder int    `json:"sort_order"`
}

type ProductListItem struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	StockCode   string     `json:"stock_code"`
	BrandID     *uint      `json:"brand_id"`
	BrandName   string     `json:"brand_name,omitempty"`
	Currency    string     `json:"currency"`
	IsActive    bool       `json:"is_active"`
	Price       PriceView  `json:"price"`
	Price2      *PriceView `json:"price2,omitempty"`
	Price2Label string     `json:"price2_label,omitempty"`
}

type ProductDetail struct {
	ProductListItem
	Description     string             `json:"description"`
	ListPrice       float64            `json:"list_price"`
	DiscountPercent float64            `json:"discount_percent"`
	KDVPercent      float64            `json:"kdv_percent"`
	ProfitPercent   float64            `json:"profit_percent"`
	HasPrice2       bool               `json:"has_price2"`
	ListPrice2      float64            `json:"list_price2"`
	DiscountPercent2 float64           `json:"discount_percent2"`
	Variations      []VariationView    `json:"variations"`
	Suppliers       []SupplierLinkView `json:"suppliers"`
	SpecImages      []SpecImageView    `json:"spec_images"`
}

func toPriceView(b pricing.Breakdown, currency models.Currency) PriceView {
	view := PriceView{
		BuyPrice:  pricing.Round2(b.BuyPrice),
		SalePrice: pricing.Round2(b.SalePrice),
		Currency:  string(currency),
	}
	if !b.RateMissing {
		try := pricing.Round2(b.SalePriceTRY)
		view.SalePriceTRY = &try
	}
	return view
}

func productPrices(p *models.Product, rates pricing.CurrencyRates) (PriceView, *PriceView) {
	price := toPriceView(pricing.Calculate(pricing.ForProduct(p, 1), rates), p.Currency)
	if !p.HasPrice2 {
		return price, nil
	}
	p2 := toPriceView(pricing.Calculate(pricing.ForProduct(p, 2), rates), p.Currency)
	return price, &p2
}

func validateCurrency(cur string) (models.Currency, error) {
	switch models.Currency(cur) {
	case models.CurrencyTRY, models.CurrencyUSD, models.CurrencyEUR:
		return models.Currency(cur), nil
	case "":
		return models.CurrencyTRY, nil
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "Para birimi TRY, USD veya EUR olmalı")
	}
}

// Unique index ihlali mi? (Postgres "duplicate key", sqlite "UNIQUE constraint")
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// -------------------------
// Product CRUD
// -------------------------

// GET /api/products
// Query: q (isim/stok kodu araması), brand_id, include_inactive
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).Preload("Brand").Order("name asc")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			pat := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(stock_code) LIKE ?", pat, pat)
		}
		if bid := c.QueryInt("brand_id"); bid > 0 {
			dbq = dbq.Where("brand_id = ?", bid)
		}
		if c.Query("include_inactive") != "true" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var products []models.Product
		if err := dbq.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		// Kurlar istek başına bir kere okunur, her ürün için tekrar sorgulanmaz
		rates := settings.RequestRates()

		resp := make([]ProductListItem, 0, len(products))
		for i := range products {
			resp = append(resp, toListItem(&products[i], rates))
		}
		return c.JSON(resp)
	}
}

func toListItem(p *models.Product, rates pricing.CurrencyRates) ProductListItem {
	price, price2 := productPrices(p, rates)
	item := ProductListItem{
		ID:          p.ID,
		Name:        p.Name,
		StockCode:   p.StockCode,
		BrandID:     p.BrandID,
		Currency:    string(p.Currency),
		IsActive:    p.IsActive,
		Price:       price,
		Price2:      price2,
		Price2Label: p.Price2Label,
	}
	if p.Brand != nil {
		item.BrandName = p.Brand.Name
	}
	return item
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün id")
		}

		var product models.Product
		if err := database.DB.
			Preload("Brand").
			Preload("Variations").
			Preload("Variations.Group").
			Preload("Suppliers.Supplier").
			Preload("SpecImages", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
			First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		rates := settings.RequestRates()

		detail := ProductDetail{
			ProductListItem:  toListItem(&product, rates),
			Description:      product.Description,
			ListPrice:        product.ListPrice,
			DiscountPercent:  product.DiscountPercent,
			KDVPercent:       product.KDVPercent,
			ProfitPercent:    product.ProfitPercent,
			HasPrice2:        product.HasPrice2,
			ListPrice2:       product.ListPrice2,
			DiscountPercent2: product.DiscountPercent2,
			Variations:       make([]VariationView, 0, len(product.Variations)),
			Suppliers:        make([]SupplierLinkView, 0, len(product.Suppliers)),
			SpecImages:       make([]SpecImageView, 0, len(product.SpecImages)),
		}

		for i := range product.Variations {
			v := &product.Variations[i]
			in, _ := pricing.ForVariation(&product, v, 1)
			view := VariationView{
				ID:             v.ID,
				GroupID:        v.GroupID,
				Label:          v.Label,
				SKU:            v.SKU,
				HasCustomPrice: v.HasCustomPrice,
				Price:          toPriceView(pricing.Calculate(in, rates), product.Currency),
			}
			if v.Group != nil {
				view.GroupName = v.Group.Name
			}
			if product.HasPrice2 {
				in2, _ := pricing.ForVariation(&product, v, 2)
				p2 := toPriceView(pricing.Calculate(in2, rates), product.Currency)
				view.Price2 = &p2
			}
			detail.Variations = append(detail.Variations, view)
		}

		for i := range product.Suppliers {
			link := &product.Suppliers[i]
			detail.Suppliers = append(detail.Suppliers, SupplierLinkView{
				SupplierID:   link.SupplierID,
				SupplierName: link.Supplier.Name,
				VadeDays:     link.Supplier.VadeDays,
				Note:         link.Note,
			})
		}

		for i := range product.SpecImages {
			img := &product.SpecImages[i]
			detail.SpecImages = append(detail.SpecImages, SpecImageView{
				ID:        img.ID,
				FilePath:  img.FilePath,
				SortOrder: img.SortOrder,
			})
		}

		return c.JSON(detail)
	}
}

// POST /api/products  (sadece admin)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}
		currency, err := validateCurrency(body.Currency)
		if err != nil {
			return err
		}

		product := models.Product{
			Name:             body.Name,
			StockCode:        strings.TrimSpace(body.StockCode),
			BrandID:          body.BrandID,
			Description:      body.Description,
			ListPrice:        body.ListPrice,
			DiscountPercent:  body.DiscountPercent,
			KDVPercent:       body.KDVPercent,
			ProfitPercent:    body.ProfitPercent,
			Currency:         currency,
			HasPrice2:        body.HasPrice2,
			ListPrice2:       body.ListPrice2,
			DiscountPercent2: body.DiscountPercent2,
			Price2Label:      body.Price2Label,
			IsActive:         true,
		}

		// Ürün + varyasyonlar + tedarikçi bağlantıları tek transaction'da
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			if err := insertVariations(tx, product.ID, body.Variations); err != nil {
				return err
			}
			return insertSupplierLinks(tx, product.ID, body.Suppliers)
		})
		if txErr != nil {
			if fe, ok := txErr.(*fiber.Error); ok {
				return fe
			}
			if isUniqueViolation(txErr) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir ürün zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		userID, userName, _, _ := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "product", EntityID: product.ID,
			Action:      models.AuditActionCreate,
			Description: "Ürün oluşturuldu: " + product.Name,
			After:       product,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": product.ID})
	}
}

// PUT /api/products/:id  (sadece admin)
// Varyasyonlar toplu değiştirilir: eskiler silinir, gelenler eklenir.
// Silme + ekleme aynı transaction'da yapılır, yarım kalmış varyasyon
// listesi oluşamaz.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün id")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		before := product

		var body ProductPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}
		currency, err := validateCurrency(body.Currency)
		if err != nil {
			return err
		}

		product.Name = body.Name
		product.StockCode = strings.TrimSpace(body.StockCode)
		product.BrandID = body.BrandID
		product.Description = body.Description
		product.ListPrice = body.ListPrice
		product.DiscountPercent = body.DiscountPercent
		product.KDVPercent = body.KDVPercent
		product.ProfitPercent = body.ProfitPercent
		product.Currency = currency
		product.HasPrice2 = body.HasPrice2
		product.ListPrice2 = body.ListPrice2
		product.DiscountPercent2 = body.DiscountPercent2
		product.Price2Label = body.Price2Label

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductVariation{}).Error; err != nil {
				return err
			}
			if err := insertVariations(tx, product.ID, body.Variations); err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductSupplier{}).Error; err != nil {
				return err
			}
			return insertSupplierLinks(tx, product.ID, body.Suppliers)
		})
		if txErr != nil {
			if fe, ok := txErr.(*fiber.Error); ok {
				return fe
			}
			if isUniqueViolation(txErr) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir ürün zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		userID, userName, _, _ := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "product", EntityID: product.ID,
			Action:      models.AuditActionUpdate,
			Description: "Ürün güncellendi: " + product.Name,
			Before:      before,
			After:       product,
		})

		return c.JSON(fiber.Map{"id": product.ID})
	}
}

// DELETE /api/products/:id  (sadece admin)
// Gerçek silme yok; is_active=false yapılır, geçmiş fişlerde ürün adı kalır.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün id")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if err := database.DB.Model(&product).Update("is_active", false).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		userID, userName, _, _ := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "product", EntityID: product.ID,
			Action:      models.AuditActionDelete,
			Description: "Ürün pasife alındı: " + product.Name,
			Before:      product,
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}

func insertVariations(tx *gorm.DB, productID uint, payloads []VariationPayload) error {
	for _, vp := range payloads {
		label := strings.TrimSpace(vp.Label)
		if label == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Varyasyon etiketi boş olamaz")
		}
		v := models.ProductVariation{
			ProductID:        productID,
			GroupID:          vp.GroupID,
			Label:            label,
			SKU:              strings.TrimSpace(vp.SKU),
			HasCustomPrice:   vp.HasCustomPrice,
			ListPrice:        vp.ListPrice,
			DiscountPercent:  vp.DiscountPercent,
			ListPrice2:       vp.ListPrice2,
			DiscountPercent2: vp.DiscountPercent2,
		}
		if err := tx.Create(&v).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertSupplierLinks(tx *gorm.DB, productID uint, payloads []SupplierLinkPayload) error {
	for _, sp := range payloads {
		if sp.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id zorunlu")
		}
		var count int64
		tx.Model(&models.Supplier{}).Where("id = ?", sp.SupplierID).Count(&count)
		if count == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi bulunamadı")
		}
		link := models.ProductSupplier{
			ProductID:  productID,
			SupplierID: sp.SupplierID,
			Note:       sp.Note,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
