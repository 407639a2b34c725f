package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	headerRequestID = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware keeps a caller's X-Request-Id or assigns a UUID.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(headerRequestID, id)
			c.Set(requestIDKey, id)
			return next(c)
		}
	}
}

// RequestID returns the ID assigned by RequestIDMiddleware, if any.
func RequestID(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

// LoggingMiddleware logs one line per request, tagged with the game when the
// route names one. Server errors log at warn. WebSocket requests are logged
// when the connection closes.
func LoggingMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			attrs := []any{
				"request_id", RequestID(c),
				"method", c.Request().Method,
				"route", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			}
			if id := c.Param("id"); id != "" {
				attrs = append(attrs, "game_id", id)
			} else if id := c.QueryParam("game"); id != "" {
				attrs = append(attrs, "game_id", id)
			}
			level := slog.LevelInfo
			if c.Response().Status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(c.Request().Context(), level, "request", attrs...)
			return err
		}
	}
}
