package api

import (
	"net/http"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorWriter renders use case errors as {success:false, message}.
type ErrorWriter struct {
	production bool
	log        *zap.Logger
}

func NewErrorWriter(production bool, log *zap.Logger) *ErrorWriter {
	return &ErrorWriter{production: production, log: log}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (w *ErrorWriter) Write(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	message := domain.PublicMessage(err)
	if kind == domain.KindInternal {
		w.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		if w.production {
			message = "Internal Server Error"
		} else {
			message = err.Error()
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func (w *ErrorWriter) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not Found - " + c.Request.URL.Path})
}
