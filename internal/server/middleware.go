package server

import (
	"net/http"
	"time"

	"nihilistkernel/internal/api"
	"nihilistkernel/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID reuses the caller's X-Request-ID or assigns a new one, and echoes
// it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(api.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(api.HeaderRequestID, id)
		c.Next()
	}
}

func requestLogger(c *gin.Context) *logging.Logger {
	return logging.WithRequestID(logging.CategoryServer, c.GetString(requestIDKey))
}

// Recovery turns a handler panic into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestLogger(c).Error("Panic recovered: %v | Method: %s | Path: %s",
					err, c.Request.Method, c.Request.URL.Path)
				errorJSON(c, http.StatusInternalServerError, MsgGenerateFailed)
			}
		}()
		c.Next()
	}
}

// AccessLog logs one line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestLogger(c).Info("%s %s %d %v", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}

// CORS allows browser calls from origin only. "*" allows any origin.
// Preflight requests are answered here with 204.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqOrigin := c.GetHeader("Origin")
		if reqOrigin != "" && (origin == "*" || reqOrigin == origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", reqOrigin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+api.HeaderRequestID)
			h.Set("Access-Control-Expose-Headers", api.HeaderRequestID)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
