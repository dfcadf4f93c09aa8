package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// Recovery turns a panic into a 500 with the usual error body.
func Recovery(errs *ErrorWriter) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		errs.log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		message := "Internal Server Error"
		if !errs.production {
			if err, ok := recovered.(error); ok {
				message = err.Error()
			}
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": message})
	})
}

// CORS wraps the whole router so preflight requests are answered before gin
// routing. An empty origin list allows any origin.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API is running"})
}
