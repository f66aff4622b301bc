package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homedeck/homedeck/internal/api/models"
)

// GetUserApps handles GET /apps.
func (h *Handler) GetUserApps(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	respond(c, h.apps.GetUserApps(c.Request.Context(), id.UserID))
}

// UpdateAppOrder handles PUT /apps/order.
func (h *Handler) UpdateAppOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.UpdateAppOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	respond(c, h.apps.ReplaceUserApps(c.Request.Context(), id.UserID, req.ToAppInputs()))
}

// GetAppCatalog handles GET /apps/catalog.
func (h *Handler) GetAppCatalog(c *gin.Context) {
	respond(c, h.apps.GetCatalog(c.Request.Context()))
}
