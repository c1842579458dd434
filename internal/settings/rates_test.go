package settings

import (
	"net/http"
	"testing"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/pricing"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCurrencyRates(t *testing.T) {
	db := testutil.SetupDB(t)

	t.Run("migration tohumlar, kurlar sıfır başlar", func(t *testing.T) {
		rates := LoadCurrencyRates(db)
		assert.Zero(t, rates.USDToTRY)
		assert.Zero(t, rates.EURToTRY)
	})

	t.Run("kaydet ve geri oku", func(t *testing.T) {
		require.NoError(t, SaveCurrencyRates(db, pricing.CurrencyRates{USDToTRY: 41.5, EURToTRY: 48.25}))
		rates := LoadCurrencyRates(db)
		assert.InDelta(t, 41.5, rates.USDToTRY, 1e-9)
		assert.InDelta(t, 48.25, rates.EURToTRY, 1e-9)
	})

	t.Run("bozuk JSON sıfır kur sayılır", func(t *testing.T) {
		require.NoError(t, db.Model(&models.AppSetting{}).
			Where("key = ?", models.SettingKeyCurrencyRates).
			Update("value", "{bozuk").Error)
		rates := LoadCurrencyRates(db)
		assert.Zero(t, rates.USDToTRY)
		assert.Zero(t, rates.EURToTRY)
	})
}

func TestUpdateCurrencyRatesHandler(t *testing.T) {
	db := testutil.SetupDB(t)
	cfg := testutil.TestConfig()
	staff := testutil.CreateUser(t, db, "tezgahtar", models.RoleStaff)

	app := testutil.NewApp()
	api := app.Group("/api", auth.JWTMiddleware(cfg))
	api.Get("/settings/currency-rates", GetCurrencyRatesHandler())
	api.Put("/settings/currency-rates", UpdateCurrencyRatesHandler())

	usd := 41.5
	resp, err := app.Test(testutil.AuthRequest(t, cfg, staff, "PUT", "/api/settings/currency-rates",
		CurrencyRatesRequest{USDTRY: &usd}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body CurrencyRatesResponse
	testutil.DecodeBody(t, resp, &body)
	assert.InDelta(t, 41.5, body.USDTRY, 1e-9)
	// Gönderilmeyen kur değişmez
	assert.Zero(t, body.EURTRY)

	// Negatif kur reddedilir
	neg := -1.0
	resp, err = app.Test(testutil.AuthRequest(t, cfg, staff, "PUT", "/api/settings/currency-rates",
		CurrencyRatesRequest{EURTRY: &neg}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// GET kalıcı değeri döner
	resp, err = app.Test(testutil.AuthRequest(t, cfg, staff, "GET", "/api/settings/currency-rates", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeBody(t, resp, &body)
	assert.InDelta(t, 41.5, body.USDTRY, 1e-9)
}
