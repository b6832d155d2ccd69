package telegram

import (
	"github.com/m3rciful/applybot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain: panic recovery, the
// receipt log with request id, and per-update message counters.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
}
