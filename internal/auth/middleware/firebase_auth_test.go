package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	authctx "github.com/crm-obras-2n/crm-obras-backend/internal/auth"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "ana@2n.es"}}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(FirebaseAuthMiddleware(fakeVerifier{}))
	r.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, authctx.UserFirebaseUID(c)+"|"+authctx.UserEmail(c))
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{name: "missing", code: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer nope", code: http.StatusUnauthorized},
		{name: "valid", header: "Bearer good", code: http.StatusOK, body: "uid-1|ana@2n.es"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.code, rr.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rr.Body.String())
			} else {
				assert.Contains(t, rr.Body.String(), `"ok":false`)
			}
		})
	}
}
