package main

import (
	"log"
	"strings"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/audit"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/b2b"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/catalog"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/config"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/firm"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/notes"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/retail"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	// .env varsa yükle, yoksa environment'tan devam
	if err := godotenv.Load(); err != nil {
		log.Println(".env bulunamadı, environment değişkenleri kullanılıyor")
	}

	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true, // Token HTTP-only cookie'de taşınıyor
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Post("/auth/logout", auth.LogoutHandler())
	protected.Get("/auth/me", auth.MeHandler())

	requireAdmin := auth.RequireRole(models.RoleAdmin)

	// Kullanıcı yönetimi
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(requireAdmin)
	adminRoutes.Post("/users", auth.CreateUserHandler())
	adminRoutes.Get("/users", auth.ListUsersHandler())

	// Ayarlar (kurlar her auth kullanıcı tarafından güncellenebilir)
	protected.Get("/settings/currency-rates", settings.GetCurrencyRatesHandler())
	protected.Put("/settings/currency-rates", settings.UpdateCurrencyRatesHandler())

	// Katalog
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/products/export", catalog.ExportProductsHandler())
	protected.Get("/products/:id", catalog.GetProductHandler())
	protected.Post("/products", requireAdmin, catalog.CreateProductHandler())
	protected.Put("/products/:id", requireAdmin, catalog.UpdateProductHandler())
	protected.Delete("/products/:id", requireAdmin, catalog.DeleteProductHandler())
	protected.Post("/products/:id/images", requireAdmin, catalog.UploadSpecImageHandler(cfg))
	protected.Delete("/product-images/:id", requireAdmin, catalog.DeleteSpecImageHandler())

	// Varyasyon grupları
	protected.Get("/variation-groups", catalog.ListVariationGroupsHandler())
	protected.Post("/variation-groups", requireAdmin, catalog.CreateVariationGroupHandler())
	protected.Delete("/variation-groups/:id", requireAdmin, catalog.DeleteVariationGroupHandler())

	// Markalar
	protected.Get("/brands", catalog.ListBrandsHandler())
	protected.Post("/brands", requireAdmin, catalog.CreateBrandHandler())
	protected.Put("/brands/:id", requireAdmin, catalog.UpdateBrandHandler())
	protected.Delete("/brands/:id", requireAdmin, catalog.DeleteBrandHandler())

	// Tedarikçiler
	protected.Get("/suppliers", catalog.ListSuppliersHandler())
	protected.Post("/suppliers", requireAdmin, catalog.CreateSupplierHandler())
	protected.Put("/suppliers/:id", requireAdmin, catalog.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", requireAdmin, catalog.DeleteSupplierHandler())

	// Firmalar
	protected.Get("/firms", firm.ListFirmsHandler())
	protected.Get("/firms/:id", firm.GetFirmHandler())
	protected.Post("/firms", requireAdmin, firm.CreateFirmHandler())
	protected.Put("/firms/:id/lock", requireAdmin, firm.LockFirmHandler())
	protected.Put("/firms/:id/unlock", requireAdmin, firm.UnlockFirmHandler())
	protected.Put("/firms/:id", requireAdmin, firm.UpdateFirmHandler())
	protected.Delete("/firms/:id", requireAdmin, firm.DeleteFirmHandler())

	// Perakende satış (POS)
	protected.Post("/sales", retail.CheckoutHandler())
	protected.Get("/sales", retail.ListSalesHandler())
	protected.Get("/sales/:id", retail.GetSaleHandler())
	protected.Put("/sales/:id", requireAdmin, retail.UpdateSaleHandler())

	// B2B siparişleri
	protected.Post("/b2b-sales", b2b.CreateOrderHandler())
	protected.Get("/b2b-sales", b2b.ListOrdersHandler())
	protected.Get("/b2b-sales/summary", b2b.OrderSummaryHandler())
	protected.Get("/b2b-sales/:id", b2b.GetOrderHandler())
	protected.Put("/b2b-sales/:id", requireAdmin, b2b.UpdateOrderHandler())

	// Not panosu
	protected.Get("/notes", notes.ListNotesHandler())
	protected.Post("/notes", notes.CreateNoteHandler())
	protected.Put("/notes/:id/toggle", notes.ToggleNoteHandler())
	protected.Put("/notes/:id", notes.UpdateNoteHandler())
	protected.Delete("/notes/:id", notes.DeleteNoteHandler())

	// Audit logs
	protected.Get("/audit-logs", requireAdmin, audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
