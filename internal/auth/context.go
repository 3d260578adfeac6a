package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID   = "firebase_uid"
	CtxEmail         = "email"
	CtxFirebaseToken = "firebase_token"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// It is set by FirebaseAuthMiddleware or, in development, by OptionalUser.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

func UserEmail(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxEmail))
}
