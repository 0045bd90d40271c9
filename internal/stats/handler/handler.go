package handler

import (
	"leadcall_backend/internal/stats/service"
	"leadcall_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves dashboard statistics.
type Handler struct {
	svc *service.Service
}

// New creates a new stats handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Get returns the dashboard statistics.
// GET /api/stats
func (h *Handler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
