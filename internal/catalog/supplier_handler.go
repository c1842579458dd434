package catalog

import (
	"strings"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SupplierPayload struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	VadeDays    int    `json:"vade_days"` // Ödeme vadesi (gün)
	Note        string `json:"note"`
}

type SupplierResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	VadeDays    int    `json:"vade_days"`
	Note        string `json:"note"`
}

func toSupplierResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		VadeDays:    s.VadeDays,
		Note:        s.Note,
	}
}

// GET /api/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for i := range suppliers {
			resp = append(resp, toSupplierResponse(&suppliers[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/suppliers  (sadece admin)
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi adı zorunlu")
		}
		if body.VadeDays < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Vade günü negatif olamaz")
		}

		supplier := models.Supplier{
			Name:        body.Name,
			ContactName: body.ContactName,
			Phone:       body.Phone,
			Email:       body.Email,
			Address:     body.Address,
			VadeDays:    body.VadeDays,
			Note:        body.Note,
		}
		if err := database.DB.Create(&supplier).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir tedarikçi zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toSupplierResponse(&supplier))
	}
}

// PUT /api/suppliers/:id  (sadece admin)
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz tedarikçi id")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		var body SupplierPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi adı zorunlu")
		}
		if body.VadeDays < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Vade günü negatif olamaz")
		}

		supplier.Name = body.Name
		supplier.ContactName = body.ContactName
		supplier.Phone = body.Phone
		supplier.Email = body.Email
		supplier.Address = body.Address
		supplier.VadeDays = body.VadeDays
		supplier.Note = body.Note

		if err := database.DB.Save(&supplier).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir tedarikçi zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi güncellenemedi")
		}

		return c.JSON(toSupplierResponse(&supplier))
	}
}

// DELETE /api/suppliers/:id  (sadece admin)
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz tedarikçi id")
		}

		var count int64
		database.DB.Model(&models.ProductSupplier{}).Where("supplier_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu tedarikçiye bağlı ürünler var, önce bağlantıları kaldırın")
		}

		if err := database.DB.Delete(&models.Supplier{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi silinemedi")
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
