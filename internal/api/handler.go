package api

import (
	"context"

	"ipreverse/internal/api/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reverser is the service behind GET /
type Reverser interface {
	Reverse(ctx context.Context, clientIP string) (string, error)
}

// API serves the root route
type API struct {
	service Reverser
	logger  *zap.Logger
}

// NewAPI creates new API
func NewAPI(svc Reverser, logger *zap.Logger) *API {
	return &API{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes registers API routes
func (api *API) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", api.reverseIP)
}

// reverseIP answers with the caller's address reversed
func (api *API) reverseIP(c *gin.Context) {
	resp := response.New(c, api.logger)

	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = c.Request.RemoteAddr
	}

	reversed, err := api.service.Reverse(c.Request.Context(), clientIP)
	if err != nil {
		resp.Error(err)
		return
	}

	resp.Success(reversed)
}
