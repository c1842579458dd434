package catalog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/config"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

// POST /api/products/:id/images  (sadece admin)
// Multipart form, "image" alanı. Dosya cfg.ProductImagePath altına
// <urunID>-<timestamp><uzantı> adıyla kaydedilir, yol veritabanına yazılır.
func UploadSpecImageHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün id")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		file, err := c.FormFile("image")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image alanı zorunlu (multipart form)")
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".webp":
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Sadece jpg, png veya webp yüklenebilir")
		}

		if err := os.MkdirAll(cfg.ProductImagePath, 0o755); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görsel klasörü oluşturulamadı")
		}

		fileName := fmt.Sprintf("%d-%d%s", product.ID, time.Now().UnixNano(), ext)
		filePath := filepath.Join(cfg.ProductImagePath, fileName)

		if err := c.SaveFile(file, filePath); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görsel kaydedilemedi")
		}

		var maxOrder int
		database.DB.Model(&models.ProductSpecImage{}).
			Where("product_id = ?", product.ID).
			Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder)

		img := models.ProductSpecImage{
			ProductID: product.ID,
			FilePath:  filePath,
			SortOrder: maxOrder + 1,
		}
		if err := database.DB.Create(&img).Error; err != nil {
			// DB kaydı başarısızsa diskte artık dosya bırakma
			_ = os.Remove(filePath)
			return fiber.NewError(fiber.StatusInternalServerError, "Görsel kaydı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(SpecImageView{
			ID:        img.ID,
			FilePath:  img.FilePath,
			SortOrder: img.SortOrder,
		})
	}
}

// DELETE /api/product-images/:id  (sadece admin)
func DeleteSpecImageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz görsel id")
		}

		var img models.ProductSpecImage
		if err := database.DB.First(&img, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görsel bulunamadı")
		}

		if err := database.DB.Delete(&img).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görsel silinemedi")
		}

		// Disk silme hatası kaydı engellemez, sadece loglanır
		if err := os.Remove(img.FilePath); err != nil && !os.IsNotExist(err) {
			log.Println("Görsel dosyası silinemedi:", err)
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}
