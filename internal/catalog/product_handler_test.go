package catalog

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/pricing"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/settings"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogApp(t *testing.T) (*fiber.App, *gorm.DB, *models.User) {
	t.Helper()

	db := testutil.SetupDB(t)
	cfg := testutil.TestConfig()
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)

	app := testutil.NewApp()
	api := app.Group("/api", auth.JWTMiddleware(cfg))
	api.Get("/products", ListProductsHandler())
	api.Get("/products/:id", GetProductHandler())
	api.Post("/products", auth.RequireRole(models.RoleAdmin), CreateProductHandler())
	api.Put("/products/:id", auth.RequireRole(models.RoleAdmin), UpdateProductHandler())
	api.Delete("/products/:id", auth.RequireRole(models.RoleAdmin), DeleteProductHandler())

	return app, db, admin
}

func TestProductDetailPrices(t *testing.T) {
	app, db, admin := newCatalogApp(t)
	cfg := testutil.TestConfig()

	// Liste 100 USD, iskonto %10, kâr %35, KDV %20 -> alış 90, satış 145.8
	body := ProductPayload{
		Name:            "Hilti Uç Seti",
		StockCode:       "HLT-001",
		ListPrice:       100,
		DiscountPercent: 10,
		KDVPercent:      20,
		ProfitPercent:   35,
		Currency:        "USD",
		Variations: []VariationPayload{
			{Label: "Standart"},
			{Label: "Uzun", HasCustomPrice: true, ListPrice: 200, DiscountPercent: 50},
		},
	}

	resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "POST", "/api/products", body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]uint
	testutil.DecodeBody(t, resp, &created)
	id := created["id"]
	require.NotZero(t, id)

	get := func() ProductDetail {
		resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "GET", fmt.Sprintf("/api/products/%d", id), nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var detail ProductDetail
		testutil.DecodeBody(t, resp, &detail)
		return detail
	}

	// Kur girilmemiş: TRY karşılığı null döner, 0 TL değil
	detail := get()
	assert.InDelta(t, 90.0, detail.Price.BuyPrice, 1e-9)
	assert.InDelta(t, 145.8, detail.Price.SalePrice, 1e-9)
	assert.Nil(t, detail.Price.SalePriceTRY)

	require.Len(t, detail.Variations, 2)

	// Özel fiyatsız varyasyon ürün fiyatını kullanır
	std := detail.Variations[0]
	assert.False(t, std.HasCustomPrice)
	assert.InDelta(t, 145.8, std.Price.SalePrice, 1e-9)

	// Özel fiyatlı varyasyon kendi liste/iskontosunu, ürünün KDV/kârını kullanır:
	// 200 * 0.5 = 100 alış, +%35 = 135, +%20 KDV = 162
	custom := detail.Variations[1]
	assert.True(t, custom.HasCustomPrice)
	assert.InDelta(t, 100.0, custom.Price.BuyPrice, 1e-9)
	assert.InDelta(t, 162.0, custom.Price.SalePrice, 1e-9)

	// Kur girilince TRY karşılığı hesaplanır
	require.NoError(t, settings.SaveCurrencyRates(db, pricing.CurrencyRates{USDToTRY: 40}))
	detail = get()
	require.NotNil(t, detail.Price.SalePriceTRY)
	assert.InDelta(t, 5832.0, *detail.Price.SalePriceTRY, 1e-9)
}

func TestProductSoftDelete(t *testing.T) {
	app, db, admin := newCatalogApp(t)
	cfg := testutil.TestConfig()

	p := models.Product{Name: "Eski Ürün", Currency: models.CurrencyTRY, IsActive: true}
	require.NoError(t, db.Create(&p).Error)

	resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "DELETE", fmt.Sprintf("/api/products/%d", p.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Kayıt durur, sadece pasife alınır
	var stored models.Product
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.False(t, stored.IsActive)

	// Varsayılan liste pasifleri göstermez
	resp, err = app.Test(testutil.AuthRequest(t, cfg, admin, "GET", "/api/products", nil))
	require.NoError(t, err)
	var list []ProductListItem
	testutil.DecodeBody(t, resp, &list)
	assert.Len(t, list, 0)

	resp, err = app.Test(testutil.AuthRequest(t, cfg, admin, "GET", "/api/products?include_inactive=true", nil))
	require.NoError(t, err)
	testutil.DecodeBody(t, resp, &list)
	assert.Len(t, list, 1)
}

func TestUpdateProductReplacesVariations(t *testing.T) {
	app, db, admin := newCatalogApp(t)
	cfg := testutil.TestConfig()

	p := models.Product{Name: "Menteşe", Currency: models.CurrencyTRY, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&models.ProductVariation{ProductID: p.ID, Label: "Sol"}).Error)
	require.NoError(t, db.Create(&models.ProductVariation{ProductID: p.ID, Label: "Sağ"}).Error)

	body := ProductPayload{
		Name:       "Menteşe",
		Variations: []VariationPayload{{Label: "Çift Yön"}},
	}
	resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/products/%d", p.ID), body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var variations []models.ProductVariation
	require.NoError(t, db.Where("product_id = ?", p.ID).Find(&variations).Error)
	require.Len(t, variations, 1)
	assert.Equal(t, "Çift Yön", variations[0].Label)
}

func TestUpdateProductRejectsEmptyVariationLabel(t *testing.T) {
	app, db, admin := newCatalogApp(t)
	cfg := testutil.TestConfig()

	p := models.Product{Name: "Kulp", Currency: models.CurrencyTRY, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&models.ProductVariation{ProductID: p.ID, Label: "Krom"}).Error)

	body := ProductPayload{
		Name:       "Kulp",
		Variations: []VariationPayload{{Label: "  "}},
	}
	resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/products/%d", p.ID), body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Transaction geri alındı: eski varyasyon yerinde
	var variations []models.ProductVariation
	require.NoError(t, db.Where("product_id = ?", p.ID).Find(&variations).Error)
	require.Len(t, variations, 1)
	assert.Equal(t, "Krom", variations[0].Label)
}
