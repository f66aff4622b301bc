package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homedeck/homedeck/internal/api/models"
)

// Signup handles POST /auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	isChild := req.IsChild != nil && *req.IsChild
	respond(c, h.auth.Signup(c.Request.Context(), req.Name, req.Password, isChild))
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	respond(c, h.auth.Login(c.Request.Context(), req.Name, req.Password))
}
