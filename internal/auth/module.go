// Package auth provides the operator authentication module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"leadcall_backend/internal/auth/handler"
	"leadcall_backend/internal/auth/service"
	apphttp "leadcall_backend/internal/http"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(cfg config.AuthConfig, log *logger.Logger, val *validator.Validator) *Module {
	svc := service.New(cfg, log)
	return &Module{
		handler: handler.New(svc, cfg, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Login is public with stricter rate limiting
	ctx.Public.POST("/auth/login", ctx.LoginRateLimiter.RateLimit(), m.handler.Login)
	ctx.Public.POST("/auth/logout", m.handler.Logout)

	ctx.Protected.GET("/auth/me", m.handler.Me)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
