package middlewares

import (
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// CorrelationMiddleware tags every request with a correlation id, taking the
// caller's X-Correlation-Id when present so ids survive across services.
// When the request arrived with a recording trace, the trace id doubles as
// the correlation id.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
				correlationId = span.SpanContext().TraceID().String()
			} else {
				correlationId = uuid.NewString()
			}
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Correlation-Id", correlationId)
		c.Next()
	}
}
