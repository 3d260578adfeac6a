package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// DevUser is the uid used when no X-User-Id header is sent.
const DevUser = "demo-user"

// OptionalUser sets a firebase uid in context without enforcing auth.
// Use this ONLY for development/testing (AUTH_DISABLED=true).
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = DevUser
		}
		c.Set(CtxFirebaseUID, uid)
		if email := strings.TrimSpace(c.GetHeader("X-User-Email")); email != "" {
			c.Set(CtxEmail, email)
		}
		c.Next()
	}
}
