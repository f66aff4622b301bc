package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homedeck/homedeck/internal/api/models"
	"github.com/homedeck/homedeck/internal/database"
	"github.com/homedeck/homedeck/internal/service"
)

func memoID(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		respond(c, service.BadRequest("Invalid memo ID"))
		return 0, false
	}
	return id, true
}

// ListMemos handles GET /memos.
func (h *Handler) ListMemos(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var q models.MemoListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond(c, service.BadRequest("memoType must be 1 or 2"))
		return
	}
	respond(c, h.memos.List(c.Request.Context(), id.UserID, q.MemoTypeFilter()))
}

// GetMemo handles GET /memos/:id.
func (h *Handler) GetMemo(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	memo, ok := memoID(c)
	if !ok {
		return
	}
	respond(c, h.memos.Get(c.Request.Context(), id.UserID, memo))
}

// CreateMemo handles POST /memos.
func (h *Handler) CreateMemo(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.CreateMemoRequest
	if !bindJSON(c, &req) {
		return
	}
	respond(c, h.memos.Create(c.Request.Context(), id.UserID, database.MemoType(req.MemoType), req.Title, req.Subtitle))
}

// UpdateMemo handles PATCH /memos/:id.
func (h *Handler) UpdateMemo(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	memo, ok := memoID(c)
	if !ok {
		return
	}
	var req models.UpdateMemoRequest
	if !bindJSON(c, &req) {
		return
	}
	respond(c, h.memos.Update(c.Request.Context(), id.UserID, memo, req.Title, req.Subtitle))
}

// DeleteMemo handles DELETE /memos/:id.
func (h *Handler) DeleteMemo(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	memo, ok := memoID(c)
	if !ok {
		return
	}
	respond(c, h.memos.Delete(c.Request.Context(), id.UserID, memo))
}
