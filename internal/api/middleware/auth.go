package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homedeck/homedeck/internal/auth"
	"github.com/homedeck/homedeck/internal/service"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, service.Unauthorized("Authentication required"))
			return
		}

		id, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			abort(c, service.Unauthorized("Invalid or expired token"))
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func abort(c *gin.Context, resp service.Response) {
	c.AbortWithStatusJSON(resp.StatusCode, resp)
}

// NoRoute answers unknown routes with the standard envelope.
func NoRoute(c *gin.Context) {
	resp := service.Failure("Route not found", http.StatusNotFound)
	c.JSON(resp.StatusCode, resp)
}
