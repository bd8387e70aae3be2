package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	chimw "github.com/go-chi/chi/v5/middleware"

	"opsdash/internal"
	"opsdash/internal/errors"
)

// RequestLogger logs every request with its status and latency. The request
// id is set by the transport middleware when present.
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		reqID := chimw.GetReqID(c.Request.Context())
		if reqID == "" {
			reqID = "-"
		}
		logger.Info("[HTTP] %s %s %s %d %s", reqID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// BodyLimit caps the bytes a handler may read from the request body
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			appErr := errors.InvalidInput("request body too large")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			}})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
