package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/middleware"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/service"
)

type memoryAdmins struct {
	admins map[string]*models.Admin
}

func (m *memoryAdmins) Create(ctx context.Context, admin *models.Admin) error {
	admin.ID = uuid.New()
	m.admins[admin.Email] = admin
	return nil
}

func (m *memoryAdmins) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return m.admins[email], nil
}

func (m *memoryAdmins) Count(ctx context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

func (m *memoryAdmins) TouchLastLogin(ctx context.Context, admin *models.Admin) error {
	return nil
}

func TestAuthFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authService := service.NewAuthService(&memoryAdmins{admins: make(map[string]*models.Admin)}, "test-secret", 1)
	h := NewAuthHandler(authService)

	router := gin.New()
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	router.GET("/admin/ping", middleware.RequireAdmin(authService), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin_email"))
	})

	send := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	credentials := `{"email":"ops@example.com","password":"correct-horse"}`

	if w := send(http.MethodPost, "/auth/register", credentials, ""); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	if w := send(http.MethodPost, "/auth/register", `{"email":"b@example.com","password":"another-pass"}`, ""); w.Code != http.StatusForbidden {
		t.Errorf("second register status = %d, want 403", w.Code)
	}
	if w := send(http.MethodPost, "/auth/login", `{"email":"ops@example.com","password":"wrong-pass"}`, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}

	w := send(http.MethodPost, "/auth/login", credentials, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response %s: %v", w.Body.String(), err)
	}

	if w := send(http.MethodGet, "/admin/ping", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}
	if w := send(http.MethodGet, "/admin/ping", "", "forged"); w.Code != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", w.Code)
	}
	w = send(http.MethodGet, "/admin/ping", "", resp.Token)
	if w.Code != http.StatusOK || w.Body.String() != "ops@example.com" {
		t.Errorf("admin ping = %d %q, want 200 ops@example.com", w.Code, w.Body.String())
	}
}
