package catalog

import (
	"strings"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type VariationGroupRequest struct {
	Name string `json:"name"`
}

type VariationGroupResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// GET /api/variation-groups
func ListVariationGroupsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var groups []models.VariationGroup
		if err := database.DB.Order("name asc").Find(&groups).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Varyasyon grupları listelenemedi")
		}

		resp := make([]VariationGroupResponse, 0, len(groups))
		for _, g := range groups {
			resp = append(resp, VariationGroupResponse{ID: g.ID, Name: g.Name})
		}
		return c.JSON(resp)
	}
}

// POST /api/variation-groups  (sadece admin)
func CreateVariationGroupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VariationGroupRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Grup adı zorunlu")
		}

		group := models.VariationGroup{Name: body.Name}
		if err := database.DB.Create(&group).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir grup zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Grup oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(VariationGroupResponse{ID: group.ID, Name: group.Name})
	}
}

// DELETE /api/variation-groups/:id  (sadece admin)
func DeleteVariationGroupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz grup id")
		}

		var count int64
		database.DB.Model(&models.ProductVariation{}).Where("group_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu grubu kullanan varyasyonlar var")
		}

		if err := database.DB.Delete(&models.VariationGroup{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Grup silinemedi")
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
