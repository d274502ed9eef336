package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/MCTHIAS/CathPed/pkg/errors"
)

func errorRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/test", handler)
	return r
}

func TestErrorHandlerMapsApplicationErrors(t *testing.T) {
	r := errorRouter(func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("patient", errors.New("no rows")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "patient not found")
}

func TestErrorHandlerDefaultsToInternalError(t *testing.T) {
	r := errorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("connection reset"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorHandlerLeavesCommittedResponsesAlone(t *testing.T) {
	r := errorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("already handled"))
		c.JSON(http.StatusBadRequest, gin.H{"status": "error"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
}
