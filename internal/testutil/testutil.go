// Package testutil - Handler testleri için ortak kurulum: in-memory sqlite
// veritabanı, fiber app ve kimlikli istek yardımcıları.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/config"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter int64

// SetupDB - Her test için izole in-memory sqlite açar, migration'ı çalıştırır
// ve global database.DB'yi bu bağlantıya çevirir.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("sqlite açılamadı: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration hatası: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db
}

// TestConfig - Handler testlerinde kullanılan sabit config (config.Load
// çağrılmaz, JWT_SECRET zorunluluğuna takılmaz).
func TestConfig() *config.Config {
	return &config.Config{
		HTTPPort:         "0",
		JWTSecret:        "test-secret-test-secret-test-secret!",
		CORSOrigins:      "http://localhost:5173",
		ProductImagePath: "./testdata-images",
	}
}

// NewApp - main'deki ErrorHandler ile aynı davranışta bir fiber app döner.
// Route'ları test kendisi kaydeder.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Beklenmeyen sunucu hatası"})
		},
	})
}

// CreateUser - Testler için kullanıcı kaydı. Şifre doğrulaması gereken
// testler yok, hash alanına sabit değer yazılır.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Name:         username,
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("test kullanıcısı oluşturulamadı: %v", err)
	}
	return &user
}

// AuthRequest - JSON gövdeli, token cookie'li istek hazırlar.
func AuthRequest(t *testing.T, cfg *config.Config, user *models.User, method, target string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("istek gövdesi marshal edilemedi: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := auth.GenerateToken(cfg.JWTSecret, user)
	if err != nil {
		t.Fatalf("test token'ı üretilemedi: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})

	return req
}

// DecodeBody - Yanıt gövdesini verilen hedefe çözer.
func DecodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()

	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("yanıt gövdesi çözümlenemedi: %v", err)
	}
}
