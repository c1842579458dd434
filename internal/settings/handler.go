package settings

import (
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/pricing"

	"github.com/gofiber/fiber/v2"
)

type CurrencyRatesRequest struct {
	USDTRY *float64 `json:"usd_try"`
	EURTRY *float64 `json:"eur_try"`
}

type CurrencyRatesResponse struct {
	USDTRY float64 `json:"usd_try"`
	EURTRY float64 `json:"eur_try"`
}

// GET /api/settings/currency-rates
func GetCurrencyRatesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rates := LoadCurrencyRates(database.DB)
		return c.JSON(CurrencyRatesResponse{USDTRY: rates.USDToTRY, EURTRY: rates.EURToTRY})
	}
}

// PUT /api/settings/currency-rates
// Kurlar elle girilir; her auth kullanıcı güncelleyebilir.
func UpdateCurrencyRatesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CurrencyRatesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		rates := LoadCurrencyRates(database.DB)
		if body.USDTRY != nil {
			if *body.USDTRY < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kur negatif olamaz")
			}
			rates.USDToTRY = *body.USDTRY
		}
		if body.EURTRY != nil {
			if *body.EURTRY < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kur negatif olamaz")
			}
			rates.EURToTRY = *body.EURTRY
		}

		if err := SaveCurrencyRates(database.DB, rates); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kurlar kaydedilemedi")
		}

		return c.JSON(CurrencyRatesResponse{USDTRY: rates.USDToTRY, EURTRY: rates.EURToTRY})
	}
}

// RequestRates - Handler'lar her istekte kurları bir kere yükler ve fiyat
// hesabına açıkça geçirir (global durumdan okumak yerine).
func RequestRates() pricing.CurrencyRates {
	return LoadCurrencyRates(database.DB)
}
