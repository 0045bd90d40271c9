package handler

import (
	"net/http"
	"time"

	"leadcall_backend/internal/auth/service"
	"leadcall_backend/internal/auth/transport"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/httpkit"
	"leadcall_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	cookiePath          = "/"
)

// Handler serves the login, logout and session endpoints.
type Handler struct {
	svc *service.Service
	cfg config.AuthConfig
	val *validator.Validator
}

// New creates a new auth handler.
func New(svc *service.Service, cfg config.AuthConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val}
}

// Login checks the credentials and sets the session cookie.
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	httpkit.OK(c, transport.LoginResponse{Success: true})
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	httpkit.OK(c, transport.LoginResponse{Success: true})
}

// Me returns the signed-in operator.
// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	httpkit.OK(c, transport.MeResponse{Username: identity.Username()})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt) / time.Second)
	c.SetSameSite(h.cfg.GetSessionCookieSameSite())
	c.SetCookie(
		h.cfg.GetSessionCookieName(),
		value,
		maxAge,
		cookiePath,
		"",
		h.cfg.GetSessionCookieSecure(),
		true,
	)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(h.cfg.GetSessionCookieSameSite())
	c.SetCookie(
		h.cfg.GetSessionCookieName(),
		"",
		-1,
		cookiePath,
		"",
		h.cfg.GetSessionCookieSecure(),
		true,
	)
}
