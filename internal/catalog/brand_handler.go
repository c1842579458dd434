package catalog

import (
	"strings"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BrandRequest struct {
	Name string `json:"name"`
}

type BrandResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// GET /api/brands
func ListBrandsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var brands []models.Brand
		if err := database.DB.Order("name asc").Find(&brands).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Markalar listelenemedi")
		}

		resp := make([]BrandResponse, 0, len(brands))
		for _, b := range brands {
			resp = append(resp, BrandResponse{ID: b.ID, Name: b.Name})
		}
		return c.JSON(resp)
	}
}

// POST /api/brands  (sadece admin)
func CreateBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BrandRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Marka adı zorunlu")
		}

		brand := models.Brand{Name: body.Name}
		if err := database.DB.Create(&brand).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir marka zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Marka oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(BrandResponse{ID: brand.ID, Name: brand.Name})
	}
}

// PUT /api/brands/:id  (sadece admin)
func UpdateBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz marka id")
		}

		var brand models.Brand
		if err := database.DB.First(&brand, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Marka bulunamadı")
		}

		var body BrandRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Marka adı zorunlu")
		}

		brand.Name = body.Name
		if err := database.DB.Save(&brand).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir marka zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Marka güncellenemedi")
		}

		return c.JSON(BrandResponse{ID: brand.ID, Name: brand.Name})
	}
}

// DELETE /api/brands/:id  (sadece admin)
// Markayı kullanan ürün varsa silinmez.
func DeleteBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz marka id")
		}

		var count int64
		database.DB.Model(&models.Product{}).Where("brand_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu markaya bağlı ürünler var, önce onları taşıyın")
		}

		if err := database.DB.Delete(&models.Brand{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Marka silinemedi")
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
