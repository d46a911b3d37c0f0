package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength bounds the request id copied into spans
const maxRequestIDLength = 128

// Tracing opens one server span per request through otelgin and tags it with
// the request id and, once authenticated, the username. It must run after RequestID.
func Tracing(service string, tp trace.TracerProvider) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(service, otelgin.WithTracerProvider(tp)),
		annotateSpan,
	}
}

func annotateSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if id := c.GetString(RequestIDKey); id != "" && len(id) <= maxRequestIDLength {
		span.SetAttributes(attribute.String("request_id", id))
	}

	c.Next()

	if user := c.GetString(JWTUsernameKey); user != "" {
		span.SetAttributes(attribute.String("enduser.id", user))
	}
	if len(c.Errors) > 0 {
		span.SetAttributes(attribute.String("gin.errors", c.Errors.String()))
	}
}
