package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MCTHIAS/CathPed/internal/handler"
	"github.com/MCTHIAS/CathPed/internal/model"
	authService "github.com/MCTHIAS/CathPed/internal/service/auth"
)

// SessionProber checks an optional bearer token without aborting.
type SessionProber interface {
	Principal(c *gin.Context) (string, bool)
}

type Handler struct {
	service *authService.Service
	prober  SessionProber
}

func NewHandler(service *authService.Service, prober SessionProber) *Handler {
	return &Handler{service: service, prober: prober}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/session", h.CheckSession)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid username or password"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

// CheckSession lets the front end probe whether its stored token is still
// valid, e.g. after a page reload.
func (h *Handler) CheckSession(c *gin.Context) {
	_, ok := h.prober.Principal(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": ok})
}
