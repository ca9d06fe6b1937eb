package response

import (
	"errors"
	"net/http"

	"ipreverse/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response bodies
const (
	SuccessPrefix           = "Reversed IP: "
	DatabaseConnectionError = "Error connecting to the database"
	ErrorPrefix             = "Error: "
	InternalError           = "Internal server error"
)

// Handler writes plain text responses
type Handler struct {
	ctx    *gin.Context
	logger *zap.Logger
}

// New creates new response handler
func New(c *gin.Context, logger *zap.Logger) *Handler {
	return &Handler{
		ctx:    c,
		logger: logger,
	}
}

// Success sends the reversed address
func (h *Handler) Success(reversed string) {
	h.ctx.String(http.StatusOK, SuccessPrefix+reversed)
}

// Error logs err and sends it as a 500
func (h *Handler) Error(err error) {
	var svcErr *service.Error
	kind := "unknown"
	if errors.As(err, &svcErr) {
		kind = svcErr.Kind.String()
	}

	h.logger.Error("Request failed",
		zap.String("request_id", h.ctx.GetString("request_id")),
		zap.String("client_ip", h.ctx.ClientIP()),
		zap.String("kind", kind),
		zap.Error(err))

	h.ctx.String(http.StatusInternalServerError, ErrorBody(err))
}

// InternalError sends a bare 500
func (h *Handler) InternalError() {
	h.ctx.String(http.StatusInternalServerError, InternalError)
}

// ErrorBody renders err as the text a client sees
func ErrorBody(err error) string {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return ErrorPrefix + err.Error()
	}

	switch svcErr.Kind {
	case service.ConnectionUnavailable:
		if svcErr.Detail == nil {
			return DatabaseConnectionError
		}
		return DatabaseConnectionError + ": " + svcErr.Detail.Error()
	default:
		if svcErr.Detail == nil {
			return ErrorPrefix + svcErr.Kind.String()
		}
		return ErrorPrefix + svcErr.Detail.Error()
	}
}
