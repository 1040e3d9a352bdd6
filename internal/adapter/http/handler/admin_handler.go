package handler

import (
	"ledger-api/internal/adapter/http/middleware"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-only endpoints.
type AdminHandler struct {
	ledgerSvc ports.LedgerService
	authSvc   ports.AuthService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ledgerSvc ports.LedgerService, authSvc ports.AuthService) *AdminHandler {
	return &AdminHandler{ledgerSvc: ledgerSvc, authSvc: authSvc}
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.ledgerSvc.GetStats(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// DeleteUser handles DELETE /api/v1/admin/users/:username.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.authSvc.DeleteUser(c.Request.Context(), middleware.ActorFrom(c), c.Param("username")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
