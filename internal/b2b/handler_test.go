package b2b

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderEnvelope struct {
	Sale OrderResponse `json:"sale"`
}

func newOrdersApp(t *testing.T) (*fiber.App, *gorm.DB, *models.User) {
	t.Helper()

	db := testutil.SetupDB(t)
	cfg := testutil.TestConfig()
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)

	app := testutil.NewApp()
	api := app.Group("/api", auth.JWTMiddleware(cfg))
	api.Post("/b2b-sales", CreateOrderHandler())
	api.Get("/b2b-sales/summary", OrderSummaryHandler())
	api.Get("/b2b-sales/:id", GetOrderHandler())
	api.Put("/b2b-sales/:id", auth.RequireRole(models.RoleAdmin), UpdateOrderHandler())

	return app, db, admin
}

func createFirm(t *testing.T, db *gorm.DB, name string, locked bool, reason string) *models.Firm {
	t.Helper()

	f := models.Firm{Name: name, IsLocked: locked, LockReason: reason}
	require.NoError(t, db.Create(&f).Error)
	return &f
}

func createProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()

	p := models.Product{Name: name, Currency: models.CurrencyTRY, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func createOrder(t *testing.T, app *fiber.App, admin *models.User, firmID, productID uint, qty int) OrderResponse {
	t.Helper()

	cfg := testutil.TestConfig()
	body := CreateOrderRequest{
		FirmID: firmID,
		Items: []OrderItem{
			{ProductID: productID, Quantity: qty, UnitPrice: 100, Currency: "TRY"},
		},
	}
	resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "POST", "/api/b2b-sales", body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env orderEnvelope
	testutil.DecodeBody(t, resp, &env)
	return env.Sale
}

func TestCreateOrderFreezesLinesAndTotals(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	firm := createFirm(t, db, "Yılmaz Hırdavat", false, "")
	p := createProduct(t, db, "Kilit Göbeği")

	body := CreateOrderRequest{
		FirmID:         firm.ID,
		Note:           "Kargo ile",
		DiscountAmount: 50,
		Items: []OrderItem{
			{ProductID: p.ID, Quantity: 10, UnitPrice: 12, Currency: "EUR", ExchangeRate: 48.25},
		},
	}

	resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "POST", "/api/b2b-sales", body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env orderEnvelope
	testutil.DecodeBody(t, resp, &env)
	order := env.Sale

	assert.Equal(t, "active", order.Status)
	assert.False(t, order.IsProcessed)
	assert.Equal(t, "Yılmaz Hırdavat", order.FirmName)
	require.Len(t, order.Items, 1)
	assert.InDelta(t, 579.0, order.Items[0].UnitPriceTRY, 1e-9)
	assert.InDelta(t, 5790.0, order.Items[0].LineTotalTRY, 1e-9)
	assert.InDelta(t, 5790.0, order.Subtotal, 1e-9)
	assert.InDelta(t, 5740.0, order.Total, 1e-9)
}

func TestCreateOrderLockedFirmRejected(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	firm := createFirm(t, db, "Borçlu Firma", true, "Vadesi geçmiş bakiye")
	p := createProduct(t, db, "Ürün")

	body := CreateOrderRequest{
		FirmID: firm.ID,
		Items:  []OrderItem{{ProductID: p.ID, Quantity: 1, UnitPrice: 10, Currency: "TRY"}},
	}

	resp, err := app.Test(testutil.AuthRequest(t, cfg, admin, "POST", "/api/b2b-sales", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var errBody map[string]string
	testutil.DecodeBody(t, resp, &errBody)
	assert.Contains(t, errBody["error"], "Vadesi geçmiş bakiye")

	// Kilit sadece yeni siparişi engeller, mevcut kayıtlar okunabilir olmalı:
	// sipariş hiç oluşmadı
	var count int64
	db.Model(&models.B2BSale{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestPartialReturnOverReturnRejected(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	firm := createFirm(t, db, "Firma", false, "")
	p := createProduct(t, db, "Menteşe")
	order := createOrder(t, app, admin, firm.ID, p.ID, 10)
	itemID := order.Items[0].ID

	put := func(body UpdateOrderRequest) (*http.Response, orderEnvelope) {
		req := testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID), body)
		resp, err := app.Test(req)
		require.NoError(t, err)
		var env orderEnvelope
		if resp.StatusCode == http.StatusOK {
			testutil.DecodeBody(t, resp, &env)
		}
		return resp, env
	}

	// 4 iade edildi
	resp, env := put(UpdateOrderRequest{Action: "partial_return", ItemID: itemID, ReturnQuantity: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "partially_returned", env.Sale.Status)

	// Kalan 6 iken 7 iade isteği: reddedilir, iade sayacı değişmez
	resp, _ = put(UpdateOrderRequest{Action: "partial_return", ItemID: itemID, ReturnQuantity: 7})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var item models.B2BSaleItem
	require.NoError(t, db.First(&item, itemID).Error)
	assert.Equal(t, 4, item.ReturnedQuantity)

	// Kalan 6 iade edilince returned
	resp, env = put(UpdateOrderRequest{Action: "partial_return", ItemID: itemID, ReturnQuantity: 6})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "returned", env.Sale.Status)
}

func TestSwapFlow(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	firm := createFirm(t, db, "Firma", false, "")
	gobek := createProduct(t, db, "Kilit Göbeği 68mm")
	yeni := createProduct(t, db, "Kilit Göbeği 83mm")
	order := createOrder(t, app, admin, firm.ID, gobek.ID, 10)
	itemID := order.Items[0].ID

	req := testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID),
		UpdateOrderRequest{
			Action:         "swap",
			ItemID:         itemID,
			ReturnQuantity: 3,
			SwapProductID:  yeni.ID,
			SwapQuantity:   3,
			SwapUnitPrice:  110,
			SwapCurrency:   "TRY",
			SwapNote:       "68 yerine 83mm verildi",
		})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env orderEnvelope
	testutil.DecodeBody(t, resp, &env)
	order = env.Sale

	// Kaynak satıra iade işlendi, karşılığında swap satırı eklendi
	assert.Equal(t, "partially_returned", order.Status)
	require.Len(t, order.Items, 2)

	src := order.Items[0]
	swap := order.Items[1]
	assert.Equal(t, 3, src.ReturnedQuantity)
	assert.True(t, swap.IsSwap)
	require.NotNil(t, swap.SwapSourceItemID)
	assert.Equal(t, src.ID, *swap.SwapSourceItemID)
	assert.Equal(t, "68 yerine 83mm verildi", swap.SwapNote)
	assert.Equal(t, "Kilit Göbeği 83mm", swap.ProductName)

	// Swap satırı iade edilemez
	req = testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID),
		UpdateOrderRequest{Action: "partial_return", ItemID: swap.ID, ReturnQuantity: 1})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Kaynak satırın kalanı iade edilince swap satırına rağmen returned
	req = testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID),
		UpdateOrderRequest{Action: "partial_return", ItemID: itemID, ReturnQuantity: 7})
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeBody(t, resp, &env)
	assert.Equal(t, "returned", env.Sale.Status)
}

func TestSwapOverReturnRejectedWithoutSwapLine(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	firm := createFirm(t, db, "Firma", false, "")
	p := createProduct(t, db, "Ürün A")
	q := createProduct(t, db, "Ürün B")
	order := createOrder(t, app, admin, firm.ID, p.ID, 2)

	req := testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID),
		UpdateOrderRequest{
			Action:         "swap",
			ItemID:         order.Items[0].ID,
			ReturnQuantity: 5, // satırda 2 adet var
			SwapProductID:  q.ID,
			SwapQuantity:   5,
			SwapUnitPrice:  10,
			SwapCurrency:   "TRY",
		})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Swap satırı da eklenmemiş olmalı
	var count int64
	db.Model(&models.B2BSaleItem{}).Where("is_swap = ?", true).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestProcessedFlagIndependentOfReturns(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	firm := createFirm(t, db, "Firma", false, "")
	p := createProduct(t, db, "Ürün")
	order := createOrder(t, app, admin, firm.ID, p.ID, 1)

	put := func(action string) orderEnvelope {
		req := testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID),
			UpdateOrderRequest{Action: action})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var env orderEnvelope
		testutil.DecodeBody(t, resp, &env)
		return env
	}

	env := put("mark_processed")
	assert.True(t, env.Sale.IsProcessed)

	// Tam iade işaret durumunu etkilemez
	env = put("full_return")
	assert.Equal(t, "returned", env.Sale.Status)
	assert.True(t, env.Sale.IsProcessed)

	env = put("unmark_processed")
	assert.False(t, env.Sale.IsProcessed)
	assert.Equal(t, "returned", env.Sale.Status)
}

func TestUpdateOrderNote(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	firm := createFirm(t, db, "Firma", false, "")
	p := createProduct(t, db, "Ürün")
	order := createOrder(t, app, admin, firm.ID, p.ID, 1)

	note := "Pazartesi teslim"
	req := testutil.AuthRequest(t, cfg, admin, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID),
		UpdateOrderRequest{Action: "update_note", Note: &note})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.B2BSale
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, "Pazartesi teslim", stored.Note)
}

func TestOrderMutationsRequireAdmin(t *testing.T) {
	app, db, admin := newOrdersApp(t)
	cfg := testutil.TestConfig()
	staff := testutil.CreateUser(t, db, "staff", models.RoleStaff)
	firm := createFirm(t, db, "Firma", false, "")
	p := createProduct(t, db, "Ürün")
	order := createOrder(t, app, admin, firm.ID, p.ID, 1)

	req := testutil.AuthRequest(t, cfg, staff, "PUT", fmt.Sprintf("/api/b2b-sales/%d", order.ID),
		UpdateOrderRequest{Action: "mark_processed"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
