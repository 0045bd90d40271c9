package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadcall_backend/internal/auth/service"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/httpkit"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		AdminUsername:         "admin",
		AdminPassword:         "secret",
		SessionSecret:         "test-session-secret",
		SessionTTL:            168 * time.Hour,
		SessionCookieName:     "auth_token",
		SessionCookieSameSite: http.SameSiteLaxMode,
	}
}

func newEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewWriter("production", io.Discard)
	h := New(service.New(cfg, log), cfg, validator.New())

	engine := gin.New()
	engine.POST("/api/auth/login", h.Login)
	engine.POST("/api/auth/logout", h.Logout)
	engine.GET("/api/auth/me", httpkit.SessionRequired(cfg), h.Me)
	return engine
}

func postLogin(engine *gin.Engine, username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLoginSetsSessionCookie(t *testing.T) {
	cfg := testConfig()
	engine := newEngine(cfg)

	rec := postLogin(engine, "admin", "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("expected auth_token cookie")
	}
	if !session.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if session.MaxAge < int((167 * time.Hour).Seconds()) {
		t.Fatalf("expected roughly 7 day max age, got %d", session.MaxAge)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(session)
	me := httptest.NewRecorder()
	engine.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", me.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(me.Body.Bytes(), &body)
	if body["username"] != "admin" {
		t.Fatalf("expected username admin, got %q", body["username"])
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	engine := newEngine(testConfig())

	rec := postLogin(engine, "admin", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "Invalid credentials" {
		t.Fatalf("unexpected error body: %v", body)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie expected on failed login")
	}
}

func TestLoginWithPasswordHash(t *testing.T) {
	cfg := testConfig()
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg.AdminPassword = ""
	cfg.AdminPasswordHash = string(hash)
	engine := newEngine(cfg)

	if rec := postLogin(engine, "admin", "hashed-secret"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := postLogin(engine, "admin", "secret"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	engine := newEngine(testConfig())
	if rec := postLogin(engine, "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMeRequiresSession(t *testing.T) {
	engine := newEngine(testConfig())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad bearer token, got %d", rec.Code)
	}
}

func TestMeAcceptsBearerToken(t *testing.T) {
	cfg := testConfig()
	engine := newEngine(cfg)

	token, _, err := httpkit.IssueSessionToken(cfg, "admin", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	engine := newEngine(testConfig())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired auth_token cookie, got %+v", cookies)
	}
}
