package catalog

import (
	"fmt"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/pricing"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/products/export
// Katalogu hesaplanmış fiyatlarla xlsx olarak indirir.
func ExportProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Preload("Brand").Where("is_active = ?", true).
			Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		rates := settings.RequestRates()

		f := excelize.NewFile()
		sheet := "Sheet1"

		headers := []string{"Stok Kodu", "Ürün", "Marka", "Para Birimi", "Liste Fiyatı",
			"İskonto %", "KDV %", "Kâr %", "Alış Fiyatı", "Satış Fiyatı", "Satış Fiyatı (TRY)"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for i := range products {
			p := &products[i]
			b := pricing.Calculate(pricing.ForProduct(p, 1), rates)
			row := i + 2

			brandName := ""
			if p.Brand != nil {
				brandName = p.Brand.Name
			}

			f.SetCellValue(sheet, "A"+fmt.Sprint(row), p.StockCode)
			f.SetCellValue(sheet, "B"+fmt.Sprint(row), p.Name)
			f.SetCellValue(sheet, "C"+fmt.Sprint(row), brandName)
			f.SetCellValue(sheet, "D"+fmt.Sprint(row), string(p.Currency))
			f.SetCellValue(sheet, "E"+fmt.Sprint(row), p.ListPrice)
			f.SetCellValue(sheet, "F"+fmt.Sprint(row), p.DiscountPercent)
			f.SetCellValue(sheet, "G"+fmt.Sprint(row), p.KDVPercent)
			f.SetCellValue(sheet, "H"+fmt.Sprint(row), p.ProfitPercent)
			f.SetCellValue(sheet, "I"+fmt.Sprint(row), pricing.Round2(b.BuyPrice))
			f.SetCellValue(sheet, "J"+fmt.Sprint(row), pricing.Round2(b.SalePrice))
			if b.RateMissing {
				f.SetCellValue(sheet, "K"+fmt.Sprint(row), "Kur girilmemiş")
			} else {
				f.SetCellValue(sheet, "K"+fmt.Sprint(row), pricing.Round2(b.SalePriceTRY))
			}
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", `attachment; filename="urunler.xlsx"`)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}
		return c.Send(buf.Bytes())
	}
}
