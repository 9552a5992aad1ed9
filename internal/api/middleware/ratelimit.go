package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimit applies a token-bucket limit to the routes it wraps. It protects
// the ingestion path from sensor storms; a rejected request gets a 429 so the
// sensor can back off and retry.
func RateLimit(perSecond float64, burst int) echo.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "ingestion rate limit exceeded")
			}
			return next(c)
		}
	}
}
