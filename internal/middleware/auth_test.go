package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MCTHIAS/CathPed/internal/config"
	"github.com/MCTHIAS/CathPed/internal/service/auth"
)

func newAuthFixture(t *testing.T) (*AuthMiddleware, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := auth.NewService(config.AuthConfig{
		Username:           "operator",
		PasswordHash:       string(hash),
		JWTSecret:          "test-secret",
		TokenExpiryMinutes: 30,
	})

	resp, err := svc.Login(context.Background(), "operator", "correct horse")
	require.NoError(t, err)

	return NewAuthMiddleware(svc), resp.Token
}

func protectedRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/protected", m.Authenticate(), func(c *gin.Context) {
		principal, _ := auth.Principal(c.Request.Context())
		c.String(http.StatusOK, principal)
	})
	return r
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	m, token := newAuthFixture(t)
	r := protectedRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operator", w.Body.String())
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	m, _ := newAuthFixture(t)
	r := protectedRouter(m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	m, token := newAuthFixture(t)
	r := protectedRouter(m)

	for _, header := range []string{token, "Basic " + token, "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestPrincipalProbe(t *testing.T) {
	m, token := newAuthFixture(t)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/session", nil)

	_, ok := m.Principal(c)
	assert.False(t, ok)

	c.Request.Header.Set("Authorization", "Bearer "+token)
	principal, ok := m.Principal(c)
	assert.True(t, ok)
	assert.Equal(t, "operator", principal)
}
