package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestIDKey stores the per-request identifier in Gin context.
const ContextRequestIDKey = "request_id"

// RequestIDHeader is the header the identifier is echoed back in.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a UUID so access-log lines can be
// correlated with application logs. An inbound X-Request-ID is honored.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx.Set(ContextRequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// RequestIDFrom returns the request identifier set by RequestID.
func RequestIDFrom(ctx *gin.Context) string {
	return ctx.GetString(ContextRequestIDKey)
}
