package auth_test

import (
	"net/http"
	"testing"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := testutil.TestConfig()
	app := testutil.NewApp()
	api := app.Group("/api")
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	protected := api.Group("", auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/admin/users", auth.RequireRole(models.RoleAdmin), auth.CreateUserHandler())

	return app
}

func TestRegisterAdminOnlyOnce(t *testing.T) {
	testutil.SetupDB(t)
	app := newAuthApp(t)
	cfg := testutil.TestConfig()
	fake := &models.User{} // register public, cookie yok sayılır

	body := auth.RegisterAdminRequest{Name: "Berkay", Username: "Berkay", Password: "gizli123"}
	req := testutil.AuthRequest(t, cfg, fake, "POST", "/api/auth/register-admin", body)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	testutil.DecodeBody(t, resp, &created)
	// Kullanıcı adı küçük harfe çevrilir
	assert.Equal(t, "berkay", created["username"])

	// İkinci admin kaydı engellenir
	req = testutil.AuthRequest(t, cfg, fake, "POST", "/api/auth/register-admin", body)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginSetsCookieAndMe(t *testing.T) {
	testutil.SetupDB(t)
	app := newAuthApp(t)
	cfg := testutil.TestConfig()
	fake := &models.User{}

	reg := auth.RegisterAdminRequest{Name: "Patron", Username: "patron", Password: "gizli123"}
	resp, err := app.Test(testutil.AuthRequest(t, cfg, fake, "POST", "/api/auth/register-admin", reg))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("yanlış şifre 401", func(t *testing.T) {
		body := auth.LoginRequest{Username: "patron", Password: "yanlis"}
		resp, err := app.Test(testutil.AuthRequest(t, cfg, fake, "POST", "/api/auth/login", body))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	body := auth.LoginRequest{Username: "patron", Password: "gizli123"}
	resp, err = app.Test(testutil.AuthRequest(t, cfg, fake, "POST", "/api/auth/login", body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// HTTP-only token cookie'si set edilir
	var token string
	for _, c := range resp.Cookies() {
		if c.Name == auth.TokenCookieName {
			token = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, token)

	// Cookie ile /me çalışır
	req := testutil.AuthRequest(t, cfg, fake, "GET", "/api/auth/me", nil)
	req.Header.Del("Cookie")
	req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]interface{}
	testutil.DecodeBody(t, resp, &me)
	assert.Equal(t, "patron", me["username"])
	assert.Equal(t, "admin", me["role"])
}

func TestCreateUserRequiresAdminAndUniqueUsername(t *testing.T) {
	db := testutil.SetupDB(t)
	app := newAuthApp(t)
	cfg := testutil.TestConfig()
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	staff := testutil.CreateUser(t, db, "calisan", models.RoleStaff)

	body := auth.CreateUserRequest{Name: "Tezgahtar", Username: "tezgahtar", Password: "sifre123"}

	// Staff kullanıcı açamaz
	resp, err := app.Test(testutil.AuthRequest(t, cfg, staff, "POST", "/api/admin/users", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin açar
	resp, err = app.Test(testutil.AuthRequest(t, cfg, admin, "POST", "/api/admin/users", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Aynı kullanıcı adı 409
	resp, err = app.Test(testutil.AuthRequest(t, cfg, admin, "POST", "/api/admin/users", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
