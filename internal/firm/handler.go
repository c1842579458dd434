package firm

import (
	"strings"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/audit"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type FirmPayload struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	TaxNumber   string `json:"tax_number"`
	Note        string `json:"note"`
}

type LockRequest struct {
	LockReason string `json:"lock_reason"`
}

type FirmResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	TaxNumber   string `json:"tax_number"`
	IsLocked    bool   `json:"is_locked"`
	LockReason  string `json:"lock_reason"`
	Note        string `json:"note"`
}

func toFirmResponse(f *models.Firm) FirmResponse {
	return FirmResponse{
		ID:          f.ID,
		Name:        f.Name,
		ContactName: f.ContactName,
		Phone:       f.Phone,
		Email:       f.Email,
		Address:     f.Address,
		TaxNumber:   f.TaxNumber,
		IsLocked:    f.IsLocked,
		LockReason:  f.LockReason,
		Note:        f.Note,
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// GET /api/firms
// Query: q (isim araması), locked ("true"/"false")
func ListFirmsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Firm{}).Order("name asc")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
		if locked := c.Query("locked"); locked != "" {
			dbq = dbq.Where("is_locked = ?", locked == "true")
		}

		var firms []models.Firm
		if err := dbq.Find(&firms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Firmalar listelenemedi")
		}

		resp := make([]FirmResponse, 0, len(firms))
		for i := range firms {
			resp = append(resp, toFirmResponse(&firms[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/firms/:id
func GetFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz firma id")
		}

		var firm models.Firm
		if err := database.DB.First(&firm, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
		}
		return c.JSON(toFirmResponse(&firm))
	}
}

// POST /api/firms  (sadece admin)
func CreateFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FirmPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Firma adı zorunlu")
		}

		firm := models.Firm{
			Name:        body.Name,
			ContactName: body.ContactName,
			Phone:       body.Phone,
			Email:       body.Email,
			Address:     body.Address,
			TaxNumber:   body.TaxNumber,
			Note:        body.Note,
		}
		if err := database.DB.Create(&firm).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir firma zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Firma oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toFirmResponse(&firm))
	}
}

// PUT /api/firms/:id  (sadece admin)
func UpdateFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz firma id")
		}

		var firm models.Firm
		if err := database.DB.First(&firm, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
		}

		var body FirmPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Firma adı zorunlu")
		}

		firm.Name = body.Name
		firm.ContactName = body.ContactName
		firm.Phone = body.Phone
		firm.Email = body.Email
		firm.Address = body.Address
		firm.TaxNumber = body.TaxNumber
		firm.Note = body.Note

		if err := database.DB.Save(&firm).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusConflict, "Bu isimde bir firma zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Firma güncellenemedi")
		}

		return c.JSON(toFirmResponse(&firm))
	}
}

// PUT /api/firms/:id/lock  (sadece admin)
// Kilit yeni B2B siparişini engeller, okuma erişimini engellemez.
func LockFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return setFirmLock(c, true)
	}
}

// PUT /api/firms/:id/unlock  (sadece admin)
func UnlockFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return setFirmLock(c, false)
	}
}

func setFirmLock(c *fiber.Ctx, lock bool) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz firma id")
	}

	var firm models.Firm
	if err := database.DB.First(&firm, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
	}
	before := firm

	reason := ""
	if lock {
		var body LockRequest
		if err := c.BodyParser(&body); err == nil {
			reason = strings.TrimSpace(body.LockReason)
		}
		if reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "lock_reason zorunlu")
		}
	}

	firm.IsLocked = lock
	firm.LockReason = reason
	if err := database.DB.Model(&models.Firm{}).Where("id = ?", firm.ID).
		Updates(map[string]interface{}{"is_locked": lock, "lock_reason": reason}).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Firma güncellenemedi")
	}

	userID, userName, _, _ := auth.CurrentUser(c)
	desc := "Firma kilitlendi: " + firm.Name
	if !lock {
		desc = "Firma kilidi açıldı: " + firm.Name
	}
	_ = audit.WriteLog(audit.LogOptions{
		UserID: userID, UserName: userName,
		EntityType: "firm", EntityID: firm.ID,
		Action:      models.AuditActionLock,
		Description: desc,
		Before:      before,
		After:       firm,
	})

	return c.JSON(toFirmResponse(&firm))
}

// DELETE /api/firms/:id  (sadece admin)
// Siparişi olan firma silinmez.
func DeleteFirmHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz firma id")
		}

		var count int64
		database.DB.Model(&models.B2BSale{}).Where("firm_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu firmanın siparişleri var, silinemez (kilitlemeyi deneyin)")
		}

		if err := database.DB.Delete(&models.Firm{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Firma silinemedi")
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
