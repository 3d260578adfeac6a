package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crm-obras-2n/crm-obras-backend/internal/auth"
)

// Register attaches the session routes.
func Register(rg *gin.RouterGroup) {
	rg.GET("/me", me)
}

// me returns who the current request is authenticated as.
func me(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "uid": uid, "email": auth.UserEmail(c)})
}
