// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// Public is the unauthenticated /api route group.
	Public *gin.RouterGroup
	// Protected is the session-guarded /api route group.
	Protected *gin.RouterGroup
	// Webhooks receives callbacks from the telephony provider (no session).
	Webhooks *gin.RouterGroup
	// Config is the session configuration for auth middleware (scoped access).
	Config config.SessionConfig
	// AuthMiddleware provides the session middleware.
	AuthMiddleware gin.HandlerFunc
	// LoginRateLimiter is the stricter rate limiter for the login route.
	LoginRateLimiter *httpkit.IPRateLimiter
}
